package competitionservice

import (
	"context"
	"fmt"

	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// KickFailedPayload reports a rejected kick request.
type KickFailedPayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	UserID competitiontypes.DiscordID       `json:"user_id"`
	Reason string                           `json:"reason"`
}

// KickParticipant removes a user from a competition entirely: pending freeze
// timer cancelled, membership and any frozen scores deleted, thread access
// revoked. Storage is cleared first so a crash mid-kick leaves at worst a
// memory entry that recovery will not resurrect.
func (s *CompetitionService) KickParticipant(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (CompetitionOperationResult, error) {
	return s.serviceWrapper(ctx, "KickParticipant", compType, func(ctx context.Context) (CompetitionOperationResult, error) {
		def, active := s.registry.Definition(compType)
		if !active {
			return CompetitionOperationResult{
				Failure: &KickFailedPayload{
					Type:   compType,
					UserID: userID,
					Reason: fmt.Sprintf("no active %s competition", compType),
				},
			}, nil
		}
		if _, exists := s.registry.Participant(compType, userID); !exists {
			return CompetitionOperationResult{
				Failure: &KickFailedPayload{
					Type:   compType,
					UserID: userID,
					Reason: "not a participant",
				},
			}, nil
		}

		s.registry.CancelFreeze(compType, userID)

		if err := s.CompDB.DeleteParticipant(ctx, userID, compType); err != nil {
			return CompetitionOperationResult{}, fmt.Errorf("failed to delete participant rows: %w", err)
		}
		if err := s.CompDB.DeleteFrozenScores(ctx, userID, compType); err != nil {
			return CompetitionOperationResult{}, fmt.Errorf("failed to delete frozen scores: %w", err)
		}

		s.registry.RemoveParticipant(compType, userID)

		if def.ThreadID != "" {
			if err := s.platform.RemoveThreadMember(ctx, def.ThreadID, userID); err != nil {
				s.logger.WarnContext(ctx, "Failed to remove participant from competition thread",
					attr.String("thread_id", def.ThreadID),
					attr.String("user_id", string(userID)),
					attr.Error(err),
				)
			}
		}

		payload := &competitionevents.ParticipantKickedPayload{Type: compType, UserID: userID}
		s.publishEvent(ctx, competitionevents.ParticipantKicked, payload)

		return CompetitionOperationResult{Success: payload}, nil
	})
}
