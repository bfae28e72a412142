package competitionservice

import (
	"context"
	"fmt"
	"time"

	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	competitiondb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// JoinCompetition enrolls a user: it snapshots the user's current score on
// every contest as their baseline, persists the membership, arms the freeze
// timer for the full participation window, and adds them to the competition
// thread. Contests whose fetch degrades fall back to the nominal baseline
// from the definition, so a flaky fetch at join time cannot hand the user a
// zero baseline they would trivially beat.
func (s *CompetitionService) JoinCompetition(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) (CompetitionOperationResult, error) {
	return s.serviceWrapper(ctx, "JoinCompetition", compType, func(ctx context.Context) (CompetitionOperationResult, error) {
		joinMu := s.registry.JoinLock(compType)
		if joinMu == nil {
			return joinFailure(compType, userID, fmt.Sprintf("no active %s competition", compType)), nil
		}
		joinMu.Lock()
		defer joinMu.Unlock()

		def, active := s.registry.Definition(compType)
		if !active {
			// The competition ended while we waited for the lock.
			return joinFailure(compType, userID, fmt.Sprintf("no active %s competition", compType)), nil
		}
		if _, exists := s.registry.Participant(compType, userID); exists {
			return joinFailure(compType, userID, "already participating"), nil
		}

		baselines := make(map[competitiontypes.ContestRef]float64, len(def.Problems))
		for _, ref := range def.Problems {
			res := s.fetchOrDefault(ctx, ref, userID)
			if res.Failed() {
				baselines[ref] = def.Baseline
			} else {
				baselines[ref] = res.UserScore
			}
		}

		return s.admitParticipant(ctx, def, userID, baselines, def.Duration(), false)
	})
}

// ForceJoinCompetition is the administrative enrollment: it replaces any
// existing membership, takes the fetched score as the baseline verbatim
// (zero included, when the fetch degrades), and arms the freeze timer for
// the given window instead of the full duration. A non-positive delay means
// the full duration.
func (s *CompetitionService) ForceJoinCompetition(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID, delay time.Duration) (CompetitionOperationResult, error) {
	return s.serviceWrapper(ctx, "ForceJoinCompetition", compType, func(ctx context.Context) (CompetitionOperationResult, error) {
		joinMu := s.registry.JoinLock(compType)
		if joinMu == nil {
			return joinFailure(compType, userID, fmt.Sprintf("no active %s competition", compType)), nil
		}
		joinMu.Lock()
		defer joinMu.Unlock()

		def, active := s.registry.Definition(compType)
		if !active {
			return joinFailure(compType, userID, fmt.Sprintf("no active %s competition", compType)), nil
		}

		baselines := make(map[competitiontypes.ContestRef]float64, len(def.Problems))
		for _, ref := range def.Problems {
			baselines[ref] = s.fetchOrDefault(ctx, ref, userID).UserScore
		}

		if delay <= 0 {
			delay = def.Duration()
		}
		return s.admitParticipant(ctx, def, userID, baselines, delay, true)
	})
}

// admitParticipant is the shared tail of both join paths. The caller holds
// the type's join lock.
func (s *CompetitionService) admitParticipant(
	ctx context.Context,
	def competitiontypes.Definition,
	userID competitiontypes.DiscordID,
	baselines map[competitiontypes.ContestRef]float64,
	delay time.Duration,
	forced bool,
) (CompetitionOperationResult, error) {
	joinedAt := s.now()

	for _, ref := range def.Problems {
		row := &competitiondb.ParticipantRow{
			UserID:     string(userID),
			CompType:   string(def.Type),
			ContestRef: string(ref),
			Baseline:   baselines[ref],
			Active:     true,
			JoinedAt:   joinedAt.Unix(),
		}
		if err := s.CompDB.UpsertParticipant(ctx, row); err != nil {
			return CompetitionOperationResult{}, fmt.Errorf("failed to persist participant: %w", err)
		}
	}

	s.registry.SetParticipant(def.Type, competitiontypes.Participant{
		UserID:    userID,
		Baselines: baselines,
		Active:    true,
		JoinedAt:  joinedAt,
	})

	s.scheduleFreeze(ctx, def.Type, userID, delay)

	if def.ThreadID != "" {
		if err := s.platform.AddThreadMember(ctx, def.ThreadID, userID); err != nil {
			s.logger.WarnContext(ctx, "Failed to add participant to competition thread",
				attr.String("thread_id", def.ThreadID),
				attr.String("user_id", string(userID)),
				attr.Error(err),
			)
		}
	}

	payload := &competitionevents.ParticipantJoinedPayload{
		Type:      def.Type,
		UserID:    userID,
		Baselines: baselines,
		JoinedAt:  joinedAt,
		FreezeAt:  joinedAt.Add(delay),
		Forced:    forced,
	}
	s.publishEvent(ctx, competitionevents.ParticipantJoined, payload)

	return CompetitionOperationResult{Success: payload}, nil
}

func joinFailure(compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID, reason string) CompetitionOperationResult {
	return CompetitionOperationResult{
		Failure: &competitionevents.ParticipantJoinFailedPayload{
			Type:   compType,
			UserID: userID,
			Reason: reason,
		},
	}
}
