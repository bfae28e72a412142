package competitionservice

import (
	"context"
	"fmt"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// TimeRemainingView is the success payload of TimeRemaining: one row per
// active participant in encounter order. Frozen participants are omitted.
type TimeRemainingView struct {
	Type competitiontypes.CompetitionType    `json:"comp_type"`
	Rows []competitiontypes.TimeRemainingRow `json:"rows"`
}

// TimeRemainingUnavailablePayload reports a time query for an inactive type.
type TimeRemainingUnavailablePayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	Reason string                           `json:"reason"`
}

// TimeRemaining reports how much of the participation window each active
// participant has left. A window that has elapsed but not yet been frozen
// shows as zero, never negative.
func (s *CompetitionService) TimeRemaining(ctx context.Context, compType competitiontypes.CompetitionType) (CompetitionOperationResult, error) {
	return s.serviceWrapper(ctx, "TimeRemaining", compType, func(ctx context.Context) (CompetitionOperationResult, error) {
		def, active := s.registry.Definition(compType)
		if !active {
			return CompetitionOperationResult{
				Failure: &TimeRemainingUnavailablePayload{
					Type:   compType,
					Reason: fmt.Sprintf("no active %s competition", compType),
				},
			}, nil
		}

		now := s.now()
		view := &TimeRemainingView{Type: compType}
		for _, p := range s.registry.Participants(compType) {
			if !p.Active {
				continue
			}
			remaining := p.JoinedAt.Add(def.Duration()).Sub(now)
			if remaining < 0 {
				remaining = 0
			}
			view.Rows = append(view.Rows, competitiontypes.TimeRemainingRow{
				DisplayName: s.platform.DisplayName(ctx, p.UserID),
				Remaining:   remaining,
			})
		}

		return CompetitionOperationResult{Success: view}, nil
	})
}
