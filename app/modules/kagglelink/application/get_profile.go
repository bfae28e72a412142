package linkservice

import (
	"context"
	"fmt"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	linktypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// ProfileView is the success payload of GetProfile. Profile is nil when the
// profile endpoint was unavailable; the link itself is always present.
type ProfileView struct {
	Link    linktypes.Link     `json:"link"`
	Profile *linktypes.Profile `json:"profile,omitempty"`
}

// ProfileUnavailablePayload reports a profile request for an unlinked user.
type ProfileUnavailablePayload struct {
	DiscordID competitiontypes.DiscordID `json:"discord_id"`
	Reason    string                     `json:"reason"`
}

// GetProfile returns a user's link together with their public Kaggle
// profile. A failing profile endpoint degrades to the bare link instead of
// failing the whole request.
func (s *LinkService) GetProfile(ctx context.Context, discordID competitiontypes.DiscordID) (LinkOperationResult, error) {
	return s.serviceWrapper(ctx, "GetProfile", func(ctx context.Context) (LinkOperationResult, error) {
		row, err := s.LinkDB.FindByDiscordID(ctx, discordID)
		if err != nil {
			return LinkOperationResult{}, fmt.Errorf("failed to look up link: %w", err)
		}
		if row == nil {
			return LinkOperationResult{
				Failure: &ProfileUnavailablePayload{
					DiscordID: discordID,
					Reason:    "no kaggle account linked",
				},
			}, nil
		}

		view := &ProfileView{
			Link: linktypes.Link{
				DiscordID: competitiontypes.DiscordID(row.DiscordID),
				KaggleID:  competitiontypes.KaggleID(row.KaggleID),
				Verified:  row.Verified,
			},
		}

		p, err := s.profiles.FetchProfile(ctx, view.Link.KaggleID)
		if err != nil {
			s.logger.WarnContext(ctx, "Profile endpoint unavailable, returning bare link",
				attr.String("kaggle_id", row.KaggleID),
				attr.Error(err),
			)
		} else {
			view.Profile = p
		}

		return LinkOperationResult{Success: view}, nil
	})
}
