package competitionservice

import (
	"context"
	"fmt"
	"time"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	competitiondb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// RecoverCompetitions rebuilds the in-memory state after a restart from the
// persisted definitions and participant rows. Participants whose window
// elapsed while the process was down are frozen immediately; the rest get
// their timers re-armed with the remaining delay. Recovery runs before the
// command surface opens, so nothing races it.
func (s *CompetitionService) RecoverCompetitions(ctx context.Context) error {
	defs, err := s.Definitions.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load definitions: %w", err)
	}

	for _, def := range defs {
		if err := s.recoverCompetition(ctx, def); err != nil {
			return fmt.Errorf("failed to recover %s competition: %w", def.Type, err)
		}
	}

	s.logger.InfoContext(ctx, "Competition recovery complete",
		attr.Int("competitions", len(defs)),
	)
	return nil
}

func (s *CompetitionService) recoverCompetition(ctx context.Context, def competitiontypes.Definition) error {
	if !s.registry.Register(def) {
		return fmt.Errorf("type %s already registered", def.Type)
	}

	rows, err := s.CompDB.ReadParticipants(ctx, def.Type)
	if err != nil {
		return fmt.Errorf("failed to read participants: %w", err)
	}

	now := s.now()
	var recovered, overdue int
	for _, p := range mergeParticipantRows(rows) {
		s.registry.SetParticipant(def.Type, p)
		recovered++
		if !p.Active {
			continue
		}

		elapsed := now.Sub(p.JoinedAt)
		if elapsed >= def.Duration() {
			overdue++
			// Freeze inline rather than through the bus: recovery must not
			// depend on handlers that may not be running yet.
			if _, err := s.FreezeParticipant(ctx, def.Type, p.UserID); err != nil {
				s.logger.ErrorContext(ctx, "Failed to freeze overdue participant during recovery",
					attr.String("comp_type", string(def.Type)),
					attr.String("user_id", string(p.UserID)),
					attr.Error(err),
				)
			}
			continue
		}
		s.scheduleFreeze(ctx, def.Type, p.UserID, def.Duration()-elapsed)
	}

	s.logger.InfoContext(ctx, "Competition recovered",
		attr.String("comp_type", string(def.Type)),
		attr.Int("participants", recovered),
		attr.Int("overdue", overdue),
	)
	return nil
}

// mergeParticipantRows folds the per-contest rows back into participants.
// Rows arrive ordered by join time, and the merge preserves that encounter
// order. A participant counts as active when any of their rows is active;
// joined_at takes the latest row so a partially updated join errs toward a
// longer window rather than a premature freeze.
func mergeParticipantRows(rows []competitiondb.ParticipantRow) []competitiontypes.Participant {
	index := make(map[competitiontypes.DiscordID]int)
	var out []competitiontypes.Participant
	for _, row := range rows {
		userID := competitiontypes.DiscordID(row.UserID)
		joined := time.Unix(row.JoinedAt, 0)

		i, seen := index[userID]
		if !seen {
			index[userID] = len(out)
			out = append(out, competitiontypes.Participant{
				UserID:    userID,
				Baselines: map[competitiontypes.ContestRef]float64{},
				JoinedAt:  joined,
			})
			i = len(out) - 1
		}

		out[i].Baselines[competitiontypes.ContestRef(row.ContestRef)] = row.Baseline
		if row.Active {
			out[i].Active = true
		}
		if joined.After(out[i].JoinedAt) {
			out[i].JoinedAt = joined
		}
	}
	return out
}
