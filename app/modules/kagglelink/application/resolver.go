package linkservice

import (
	"context"
	"fmt"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/kaggle"
)

var _ kaggle.IdentityResolver = (*LinkService)(nil)

// ResolveKaggleID returns the verified Kaggle account for a Discord user.
// Unverified links do not resolve: a leaderboard fetch must never trust a
// claimed-but-unproven identity.
func (s *LinkService) ResolveKaggleID(ctx context.Context, userID competitiontypes.DiscordID) (competitiontypes.KaggleID, error) {
	row, err := s.LinkDB.FindByDiscordID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to look up link: %w", err)
	}
	if row == nil || !row.Verified {
		return "", fmt.Errorf("no verified kaggle account for %s", userID)
	}
	return competitiontypes.KaggleID(row.KaggleID), nil
}
