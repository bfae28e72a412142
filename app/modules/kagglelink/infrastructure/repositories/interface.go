package linkdb

import (
	"context"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// LinkDB is the persistence surface for Kaggle account links.
type LinkDB interface {
	// FindByDiscordID returns nil when the user has no link.
	FindByDiscordID(ctx context.Context, discordID competitiontypes.DiscordID) (*LinkRow, error)
	// FindByKaggleID returns nil when the Kaggle account is unclaimed.
	FindByKaggleID(ctx context.Context, kaggleID competitiontypes.KaggleID) (*LinkRow, error)
	// UpsertLink writes a link, replacing the user's previous one.
	UpsertLink(ctx context.Context, row *LinkRow) error
	// DeleteLink reports whether a link existed.
	DeleteLink(ctx context.Context, discordID competitiontypes.DiscordID) (bool, error)
	ListLinks(ctx context.Context) ([]LinkRow, error)
}
