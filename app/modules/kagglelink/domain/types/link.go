package linktypes

import (
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// Link ties a Discord user to a Kaggle account. Unverified links exist only
// while a verification is pending; the store persists verified ones.
type Link struct {
	DiscordID competitiontypes.DiscordID `json:"discord_id"`
	KaggleID  competitiontypes.KaggleID  `json:"kaggle_id"`
	Verified  bool                       `json:"verified"`
}

// PendingVerification is an in-flight identify: the claimed account and the
// code the user must paste into their profile bio.
type PendingVerification struct {
	KaggleID competitiontypes.KaggleID `json:"kaggle_id"`
	Code     string                    `json:"code"`
}

// Profile is the public Kaggle profile data shown by the get command.
type Profile struct {
	KaggleID     competitiontypes.KaggleID `json:"kaggle_id"`
	DisplayName  string                    `json:"display_name"`
	URL          string                    `json:"url"`
	Bio          string                    `json:"bio"`
	AvatarURL    string                    `json:"avatar_url"`
	JoinedOn     string                    `json:"joined_on"`
	Followers    int                       `json:"followers"`
	Following    int                       `json:"following"`
	Competitions int                       `json:"competitions"`
	Notebooks    int                       `json:"notebooks"`
	Discussions  int                       `json:"discussions"`
	Tier         int                       `json:"tier"`
}

// TierName maps Kaggle's performance tier to its public label.
func TierName(tier int) string {
	switch tier {
	case 1:
		return "Novice"
	case 2:
		return "Contributor"
	case 3:
		return "Expert"
	case 4:
		return "Master"
	case 5:
		return "Grandmaster"
	default:
		return "Unknown"
	}
}
