package linkservice

import (
	"context"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// Service defines the Kaggle account linking operations.
type Service interface {
	BeginVerification(ctx context.Context, discordID competitiontypes.DiscordID, kaggleID competitiontypes.KaggleID) (LinkOperationResult, error)
	VerifyLink(ctx context.Context, discordID competitiontypes.DiscordID) (LinkOperationResult, error)
	GetProfile(ctx context.Context, discordID competitiontypes.DiscordID) (LinkOperationResult, error)
	Unlink(ctx context.Context, discordID competitiontypes.DiscordID) (LinkOperationResult, error)
	ListLinks(ctx context.Context) (LinkOperationResult, error)
	// ResolveKaggleID returns the verified Kaggle account for a user. It is
	// the lookup the leaderboard fetcher depends on.
	ResolveKaggleID(ctx context.Context, userID competitiontypes.DiscordID) (competitiontypes.KaggleID, error)
}
