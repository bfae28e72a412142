package competitionservice

import (
	"context"
	"fmt"

	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/scoring"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	competitiondb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// FreezeParticipant fetches each contest leaderboard one final time,
// normalizes against the participant's stored baselines, and persists the
// frozen scores. The participant's active flag flips exactly once; a freeze
// for a participant who is gone or already frozen is a silent no-op, which is
// what makes a timer that outlives a kick harmless.
func (s *CompetitionService) FreezeParticipant(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (CompetitionOperationResult, error) {
	return s.serviceWrapper(ctx, "FreezeParticipant", compType, func(ctx context.Context) (CompetitionOperationResult, error) {
		def, active := s.registry.Definition(compType)
		if !active {
			s.logger.InfoContext(ctx, "Freeze skipped, competition no longer active",
				attr.String("comp_type", string(compType)),
				attr.String("user_id", string(userID)),
			)
			return CompetitionOperationResult{}, nil
		}

		participant, exists := s.registry.Participant(compType, userID)
		if !exists || !participant.Active {
			s.logger.InfoContext(ctx, "Freeze skipped, participant not active",
				attr.String("comp_type", string(compType)),
				attr.String("user_id", string(userID)),
			)
			return CompetitionOperationResult{}, nil
		}

		// The gate: only the caller that flips the flag performs the freeze.
		if !s.registry.MarkInactive(compType, userID) {
			return CompetitionOperationResult{}, nil
		}
		s.registry.CancelFreeze(compType, userID)

		scores := make([]competitiontypes.FrozenScore, 0, len(def.Problems))
		for _, ref := range def.Problems {
			res := s.fetchOrDefault(ctx, ref, userID)

			baseline, ok := participant.Baselines[ref]
			if !ok {
				baseline = def.Baseline
			}
			norm := scoring.Normalize(def.Direction, baseline, res.UserScore, res.MinScore, res.MaxScore)

			frozen := competitiontypes.FrozenScore{
				UserID:     userID,
				Type:       compType,
				ContestRef: ref,
				Score:      res.UserScore,
				NormScore:  norm,
			}
			if err := s.CompDB.UpsertFrozenScore(ctx, &competitiondb.FrozenScoreRow{
				UserID:     string(userID),
				CompType:   string(compType),
				ContestRef: string(ref),
				Score:      frozen.Score,
				NormScore:  frozen.NormScore,
			}); err != nil {
				return CompetitionOperationResult{}, fmt.Errorf("failed to persist frozen score for %s: %w", ref, err)
			}

			row := &competitiondb.ParticipantRow{
				UserID:     string(userID),
				CompType:   string(compType),
				ContestRef: string(ref),
				Baseline:   baseline,
				Active:     false,
				JoinedAt:   participant.JoinedAt.Unix(),
			}
			if err := s.CompDB.UpsertParticipant(ctx, row); err != nil {
				return CompetitionOperationResult{}, fmt.Errorf("failed to deactivate participant row for %s: %w", ref, err)
			}

			scores = append(scores, frozen)
		}

		// Thread shuffling is best-effort: the user moves from the locked
		// competition thread into the now-open discussion thread, and a chat
		// failure must not block the score freeze.
		if def.DiscussionThreadID != "" {
			if err := s.platform.UnlockThread(ctx, def.DiscussionThreadID); err != nil {
				s.logger.WarnContext(ctx, "Failed to unlock discussion thread",
					attr.String("thread_id", def.DiscussionThreadID),
					attr.Error(err),
				)
			}
			if err := s.platform.AddThreadMember(ctx, def.DiscussionThreadID, userID); err != nil {
				s.logger.WarnContext(ctx, "Failed to add participant to discussion thread",
					attr.String("thread_id", def.DiscussionThreadID),
					attr.String("user_id", string(userID)),
					attr.Error(err),
				)
			}
		}
		if def.ThreadID != "" {
			if err := s.platform.RemoveThreadMember(ctx, def.ThreadID, userID); err != nil {
				s.logger.WarnContext(ctx, "Failed to remove participant from competition thread",
					attr.String("thread_id", def.ThreadID),
					attr.String("user_id", string(userID)),
					attr.Error(err),
				)
			}
		}

		payload := &competitionevents.ParticipantFrozenPayload{
			Type:   compType,
			UserID: userID,
			Scores: scores,
		}
		s.publishEvent(ctx, competitionevents.ParticipantFrozen, payload)

		return CompetitionOperationResult{Success: payload}, nil
	})
}
