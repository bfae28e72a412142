package linkdb

import (
	"github.com/uptrace/bun"
)

// LinkRow is one verified Discord-to-Kaggle link. The unique constraint on
// kaggle_id keeps one Kaggle account from being claimed by two users.
type LinkRow struct {
	bun.BaseModel `bun:"table:kaggle_links,alias:kl"`

	DiscordID string `bun:"discord_id,pk"`
	KaggleID  string `bun:"kaggle_id,notnull,unique"`
	Verified  bool   `bun:"verified,notnull,default:false"`
}
