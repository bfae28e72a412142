package linkservice

import (
	"context"
	"fmt"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	linkevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/events"
	linkdb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/repositories"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// VerifyLink completes the handshake: it fetches the claimed profile page
// and, when the pending code appears in it, persists the verified link. The
// pending code survives a failed check so the user can fix their bio and
// retry without running identify again.
func (s *LinkService) VerifyLink(ctx context.Context, discordID competitiontypes.DiscordID) (LinkOperationResult, error) {
	return s.serviceWrapper(ctx, "VerifyLink", func(ctx context.Context) (LinkOperationResult, error) {
		pending, ok := s.takePending(discordID)
		if !ok {
			return LinkOperationResult{
				Failure: &linkevents.LinkVerifyFailedPayload{
					DiscordID: discordID,
					Reason:    "no pending verification, run identify first",
				},
			}, nil
		}

		found, err := s.profiles.ProfileContainsCode(ctx, pending.KaggleID, pending.Code)
		if err != nil {
			return LinkOperationResult{
				Failure: &linkevents.LinkVerifyFailedPayload{
					DiscordID: discordID,
					KaggleID:  pending.KaggleID,
					Reason:    fmt.Sprintf("could not fetch kaggle profile: %v", err),
				},
			}, nil
		}
		if !found {
			return LinkOperationResult{
				Failure: &linkevents.LinkVerifyFailedPayload{
					DiscordID: discordID,
					KaggleID:  pending.KaggleID,
					Reason:    "verification code not found in profile bio",
				},
			}, nil
		}

		if err := s.LinkDB.UpsertLink(ctx, &linkdb.LinkRow{
			DiscordID: string(discordID),
			KaggleID:  string(pending.KaggleID),
			Verified:  true,
		}); err != nil {
			return LinkOperationResult{}, fmt.Errorf("failed to persist link: %w", err)
		}
		s.clearPending(discordID)

		s.logger.InfoContext(ctx, "Link verified",
			attr.String("discord_id", string(discordID)),
			attr.String("kaggle_id", string(pending.KaggleID)),
		)

		payload := &linkevents.LinkVerifiedPayload{
			DiscordID: discordID,
			KaggleID:  pending.KaggleID,
		}
		s.publishEvent(ctx, linkevents.LinkVerified, payload)

		return LinkOperationResult{Success: payload}, nil
	})
}
