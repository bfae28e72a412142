package competitionservice

import (
	"context"
	"fmt"

	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// DefineCompetition validates and installs a new competition: it creates the
// private competition thread and the public discussion thread, persists the
// definition, and registers it in memory. A type that is already active is
// rejected without side effects.
func (s *CompetitionService) DefineCompetition(ctx context.Context, def competitiontypes.Definition) (CompetitionOperationResult, error) {
	return s.serviceWrapper(ctx, "DefineCompetition", def.Type, func(ctx context.Context) (CompetitionOperationResult, error) {
		if err := def.Validate(); err != nil {
			return CompetitionOperationResult{
				Failure: &competitionevents.CompetitionDefineFailedPayload{
					Type:   def.Type,
					Reason: err.Error(),
				},
			}, nil
		}

		if _, active := s.registry.Definition(def.Type); active {
			return CompetitionOperationResult{
				Failure: &competitionevents.CompetitionDefineFailedPayload{
					Type:   def.Type,
					Reason: fmt.Sprintf("a %s competition is already running", def.Type),
				},
			}, nil
		}

		threadID, err := s.platform.CreatePrivateThread(ctx, fmt.Sprintf("%s-competition", def.Type))
		if err != nil {
			return CompetitionOperationResult{}, fmt.Errorf("failed to create competition thread: %w", err)
		}
		def.ThreadID = threadID

		discussionID, err := s.platform.CreatePrivateThread(ctx, fmt.Sprintf("%s-discussion", def.Type))
		if err != nil {
			return CompetitionOperationResult{}, fmt.Errorf("failed to create discussion thread: %w", err)
		}
		def.DiscussionThreadID = discussionID

		// Participants only see the competition thread once they join; until
		// then it stays locked. The discussion thread stays locked until the
		// first participant freezes.
		if err := s.platform.LockThread(ctx, threadID); err != nil {
			s.logger.WarnContext(ctx, "Failed to lock competition thread",
				attr.String("thread_id", threadID),
				attr.Error(err),
			)
		}
		if err := s.platform.LockThread(ctx, discussionID); err != nil {
			s.logger.WarnContext(ctx, "Failed to lock discussion thread",
				attr.String("thread_id", discussionID),
				attr.Error(err),
			)
		}

		if err := s.Definitions.Save(&def); err != nil {
			return CompetitionOperationResult{}, fmt.Errorf("failed to persist definition: %w", err)
		}

		if !s.registry.Register(def) {
			// Lost a race with a concurrent define of the same type.
			if delErr := s.Definitions.Delete(def.Type); delErr != nil {
				s.logger.ErrorContext(ctx, "Failed to roll back definition after register race",
					attr.String("comp_type", string(def.Type)),
					attr.Error(delErr),
				)
			}
			return CompetitionOperationResult{
				Failure: &competitionevents.CompetitionDefineFailedPayload{
					Type:   def.Type,
					Reason: fmt.Sprintf("a %s competition is already running", def.Type),
				},
			}, nil
		}

		s.logger.InfoContext(ctx, "Competition defined",
			attr.String("comp_type", string(def.Type)),
			attr.String("name", def.Name),
			attr.Int("duration_minutes", def.DurationMinutes),
			attr.Int("contests", len(def.Problems)),
		)

		s.publishEvent(ctx, competitionevents.CompetitionDefined, &competitionevents.CompetitionDefinedPayload{Definition: def})

		return CompetitionOperationResult{
			Success: &competitionevents.CompetitionDefinedPayload{Definition: def},
		}, nil
	})
}
