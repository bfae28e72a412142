package discord

import (
	"fmt"

	competitionservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/application"
	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	linkservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/application"
	linkevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/events"
)

// failureReason extracts the human-readable reason from a failure payload.
func failureReason(failure any) string {
	switch p := failure.(type) {
	case *competitionevents.CompetitionDefineFailedPayload:
		return p.Reason
	case *competitionevents.ParticipantJoinFailedPayload:
		return p.Reason
	case *competitionevents.ParticipantFreezeFailedPayload:
		return p.Reason
	case *competitionevents.CompetitionEndFailedPayload:
		return p.Reason
	case *competitionservice.LeaderboardUnavailablePayload:
		return p.Reason
	case *competitionservice.TimeRemainingUnavailablePayload:
		return p.Reason
	case *competitionservice.KickFailedPayload:
		return p.Reason
	case *linkservice.IdentifyFailedPayload:
		return p.Reason
	case *linkservice.ProfileUnavailablePayload:
		return p.Reason
	case *linkservice.UnlinkFailedPayload:
		return p.Reason
	case *linkevents.LinkVerifyFailedPayload:
		return p.Reason
	default:
		return fmt.Sprintf("request failed: %v", failure)
	}
}
