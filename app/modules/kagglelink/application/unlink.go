package linkservice

import (
	"context"
	"fmt"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	linkevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/events"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// UnlinkFailedPayload reports an unlink for a user with no link.
type UnlinkFailedPayload struct {
	DiscordID competitiontypes.DiscordID `json:"discord_id"`
	Reason    string                     `json:"reason"`
}

// Unlink removes a user's link and any pending verification.
func (s *LinkService) Unlink(ctx context.Context, discordID competitiontypes.DiscordID) (LinkOperationResult, error) {
	return s.serviceWrapper(ctx, "Unlink", func(ctx context.Context) (LinkOperationResult, error) {
		s.clearPending(discordID)

		existed, err := s.LinkDB.DeleteLink(ctx, discordID)
		if err != nil {
			return LinkOperationResult{}, fmt.Errorf("failed to delete link: %w", err)
		}
		if !existed {
			return LinkOperationResult{
				Failure: &UnlinkFailedPayload{
					DiscordID: discordID,
					Reason:    "no kaggle account linked",
				},
			}, nil
		}

		s.logger.InfoContext(ctx, "Link removed",
			attr.String("discord_id", string(discordID)),
		)

		payload := &linkevents.LinkRemovedPayload{DiscordID: discordID}
		s.publishEvent(ctx, linkevents.LinkRemoved, payload)

		return LinkOperationResult{Success: payload}, nil
	})
}
