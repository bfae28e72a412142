package linkservice

import (
	"context"
	"fmt"
	"strings"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	linktypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// VerificationStartedPayload is the success payload of BeginVerification:
// the code the user must paste into their Kaggle profile bio.
type VerificationStartedPayload struct {
	DiscordID competitiontypes.DiscordID `json:"discord_id"`
	KaggleID  competitiontypes.KaggleID  `json:"kaggle_id"`
	Code      string                     `json:"code"`
}

// IdentifyFailedPayload reports a rejected identify request.
type IdentifyFailedPayload struct {
	DiscordID competitiontypes.DiscordID `json:"discord_id"`
	KaggleID  competitiontypes.KaggleID  `json:"kaggle_id"`
	Reason    string                     `json:"reason"`
}

// BeginVerification starts the linking handshake: it checks the Kaggle
// account is not already claimed, generates a verification code, and parks
// it in memory until VerifyLink confirms the bio. Re-running identify
// replaces the previous pending code.
func (s *LinkService) BeginVerification(ctx context.Context, discordID competitiontypes.DiscordID, kaggleID competitiontypes.KaggleID) (LinkOperationResult, error) {
	return s.serviceWrapper(ctx, "BeginVerification", func(ctx context.Context) (LinkOperationResult, error) {
		kaggleID = competitiontypes.KaggleID(strings.TrimSpace(string(kaggleID)))
		if kaggleID == "" {
			return LinkOperationResult{
				Failure: &IdentifyFailedPayload{
					DiscordID: discordID,
					Reason:    "kaggle username must not be empty",
				},
			}, nil
		}

		existing, err := s.LinkDB.FindByKaggleID(ctx, kaggleID)
		if err != nil {
			return LinkOperationResult{}, fmt.Errorf("failed to check kaggle id: %w", err)
		}
		if existing != nil && existing.DiscordID != string(discordID) {
			return LinkOperationResult{
				Failure: &IdentifyFailedPayload{
					DiscordID: discordID,
					KaggleID:  kaggleID,
					Reason:    fmt.Sprintf("kaggle account %s is already linked to another user", kaggleID),
				},
			}, nil
		}

		code := s.newCode()
		s.setPending(discordID, linktypes.PendingVerification{KaggleID: kaggleID, Code: code})

		s.logger.InfoContext(ctx, "Verification started",
			attr.String("discord_id", string(discordID)),
			attr.String("kaggle_id", string(kaggleID)),
		)

		return LinkOperationResult{
			Success: &VerificationStartedPayload{
				DiscordID: discordID,
				KaggleID:  kaggleID,
				Code:      code,
			},
		}, nil
	})
}
