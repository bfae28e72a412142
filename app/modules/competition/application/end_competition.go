package competitionservice

import (
	"context"
	"fmt"

	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// EndCompetition tears a competition down: threads archived, every
// participant and frozen score deleted, the persisted definition removed,
// and the in-memory entry (with all its timers) dropped last. A storage
// failure aborts before memory is touched, so a failed end leaves the
// competition fully operational.
func (s *CompetitionService) EndCompetition(ctx context.Context, compType competitiontypes.CompetitionType) (CompetitionOperationResult, error) {
	return s.serviceWrapper(ctx, "EndCompetition", compType, func(ctx context.Context) (CompetitionOperationResult, error) {
		def, active := s.registry.Definition(compType)
		if !active {
			return CompetitionOperationResult{
				Failure: &competitionevents.CompetitionEndFailedPayload{
					Type:   compType,
					Reason: fmt.Sprintf("no active %s competition", compType),
				},
			}, nil
		}

		// Thread teardown is best-effort: a deleted or already archived
		// thread must not block the data teardown.
		for _, threadID := range []string{def.ThreadID, def.DiscussionThreadID} {
			if threadID == "" {
				continue
			}
			if err := s.platform.LockThread(ctx, threadID); err != nil {
				s.logger.WarnContext(ctx, "Failed to lock thread during end",
					attr.String("thread_id", threadID),
					attr.Error(err),
				)
			}
			if err := s.platform.ArchiveThread(ctx, threadID); err != nil {
				s.logger.WarnContext(ctx, "Failed to archive thread during end",
					attr.String("thread_id", threadID),
					attr.Error(err),
				)
			}
		}

		if err := s.CompDB.DeleteAllParticipants(ctx, compType); err != nil {
			return CompetitionOperationResult{}, fmt.Errorf("failed to delete participants: %w", err)
		}
		if err := s.CompDB.DeleteAllFrozenScores(ctx, compType); err != nil {
			return CompetitionOperationResult{}, fmt.Errorf("failed to delete frozen scores: %w", err)
		}
		if err := s.Definitions.Delete(compType); err != nil {
			return CompetitionOperationResult{}, fmt.Errorf("failed to delete definition: %w", err)
		}

		s.registry.Remove(compType)

		payload := &competitionevents.CompetitionEndedPayload{Type: compType}
		s.publishEvent(ctx, competitionevents.CompetitionEnded, payload)

		return CompetitionOperationResult{Success: payload}, nil
	})
}
