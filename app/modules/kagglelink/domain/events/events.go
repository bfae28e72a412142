package linkevents

import (
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// Topics published by the kagglelink module.
const (
	LinkVerified     = "kagglelink.verified"
	LinkVerifyFailed = "kagglelink.verify.failed"
	LinkRemoved      = "kagglelink.removed"
)

// LinkVerifiedPayload announces a completed verification.
type LinkVerifiedPayload struct {
	DiscordID competitiontypes.DiscordID `json:"discord_id"`
	KaggleID  competitiontypes.KaggleID  `json:"kaggle_id"`
}

// LinkVerifyFailedPayload reports a verification that did not complete.
type LinkVerifyFailedPayload struct {
	DiscordID competitiontypes.DiscordID `json:"discord_id"`
	KaggleID  competitiontypes.KaggleID  `json:"kaggle_id"`
	Reason    string                     `json:"reason"`
}

// LinkRemovedPayload announces an administrative unlink.
type LinkRemovedPayload struct {
	DiscordID competitiontypes.DiscordID `json:"discord_id"`
}
