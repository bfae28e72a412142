package competitionevents

import (
	"time"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// Topics published and consumed by the competition module.
const (
	CompetitionDefined      = "competition.defined"
	CompetitionDefineFailed = "competition.define.failed"

	ParticipantJoined     = "competition.participant.joined"
	ParticipantJoinFailed = "competition.participant.join.failed"

	// ParticipantFreezeDue is published by the freeze timers (and by
	// recovery for overdue participants); the freeze handler consumes it.
	ParticipantFreezeDue    = "competition.participant.freeze.due"
	ParticipantFrozen       = "competition.participant.frozen"
	ParticipantFreezeFailed = "competition.participant.freeze.failed"

	ParticipantKicked = "competition.participant.kicked"

	CompetitionEnded     = "competition.ended"
	CompetitionEndFailed = "competition.end.failed"
)

// CompetitionDefinedPayload announces a newly created competition.
type CompetitionDefinedPayload struct {
	Definition competitiontypes.Definition `json:"definition"`
}

// CompetitionDefineFailedPayload reports a rejected define request.
type CompetitionDefineFailedPayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	Reason string                           `json:"reason"`
}

// ParticipantJoinedPayload announces a join (or forced join).
type ParticipantJoinedPayload struct {
	Type      competitiontypes.CompetitionType           `json:"comp_type"`
	UserID    competitiontypes.DiscordID                 `json:"user_id"`
	Baselines map[competitiontypes.ContestRef]float64    `json:"baselines"`
	JoinedAt  time.Time                                  `json:"joined_at"`
	FreezeAt  time.Time                                  `json:"freeze_at"`
	Forced    bool                                       `json:"forced"`
}

// ParticipantJoinFailedPayload reports a rejected join request.
type ParticipantJoinFailedPayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	UserID competitiontypes.DiscordID       `json:"user_id"`
	Reason string                           `json:"reason"`
}

// ParticipantFreezeDuePayload asks the freeze handler to freeze one
// participant. It is intentionally small: freeze re-reads all state so it
// stays a no-op when the participant is already gone.
type ParticipantFreezeDuePayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	UserID competitiontypes.DiscordID       `json:"user_id"`
}

// ParticipantFrozenPayload announces a completed freeze.
type ParticipantFrozenPayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	UserID competitiontypes.DiscordID       `json:"user_id"`
	Scores []competitiontypes.FrozenScore   `json:"scores"`
}

// ParticipantFreezeFailedPayload reports a freeze that could not complete.
type ParticipantFreezeFailedPayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	UserID competitiontypes.DiscordID       `json:"user_id"`
	Reason string                           `json:"reason"`
}

// ParticipantKickedPayload announces an administrative removal.
type ParticipantKickedPayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	UserID competitiontypes.DiscordID       `json:"user_id"`
}

// CompetitionEndedPayload announces a competition teardown.
type CompetitionEndedPayload struct {
	Type competitiontypes.CompetitionType `json:"comp_type"`
}

// CompetitionEndFailedPayload reports a failed teardown.
type CompetitionEndFailedPayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	Reason string                           `json:"reason"`
}
