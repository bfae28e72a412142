package competitionservice

import (
	"context"
	"fmt"
	"sort"

	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/scoring"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// LeaderboardView is the success payload of Leaderboard: the definition plus
// one row per participant, sorted by total descending. Ties keep encounter
// order (join time, then user ID).
type LeaderboardView struct {
	Definition competitiontypes.Definition       `json:"definition"`
	Rows       []competitiontypes.LeaderboardRow `json:"rows"`
}

// LeaderboardUnavailablePayload reports a leaderboard request for an
// inactive type.
type LeaderboardUnavailablePayload struct {
	Type   competitiontypes.CompetitionType `json:"comp_type"`
	Reason string                           `json:"reason"`
}

// Leaderboard computes the current standings. Frozen participants score
// from their persisted frozen rows; active participants score from a live
// fetch normalized against their stored baselines, so the board reflects
// the present moment without mutating anything.
func (s *CompetitionService) Leaderboard(ctx context.Context, compType competitiontypes.CompetitionType) (CompetitionOperationResult, error) {
	return s.serviceWrapper(ctx, "Leaderboard", compType, func(ctx context.Context) (CompetitionOperationResult, error) {
		def, active := s.registry.Definition(compType)
		if !active {
			return CompetitionOperationResult{
				Failure: &LeaderboardUnavailablePayload{
					Type:   compType,
					Reason: fmt.Sprintf("no active %s competition", compType),
				},
			}, nil
		}

		participants := s.registry.Participants(compType)
		rows := make([]competitiontypes.LeaderboardRow, 0, len(participants))
		for _, p := range participants {
			row, err := s.leaderboardRow(ctx, def, p)
			if err != nil {
				return CompetitionOperationResult{}, err
			}
			rows = append(rows, row)
		}

		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })

		return CompetitionOperationResult{
			Success: &LeaderboardView{Definition: def, Rows: rows},
		}, nil
	})
}

func (s *CompetitionService) leaderboardRow(ctx context.Context, def competitiontypes.Definition, p competitiontypes.Participant) (competitiontypes.LeaderboardRow, error) {
	row := competitiontypes.LeaderboardRow{
		DisplayName: s.platform.DisplayName(ctx, p.UserID),
		Details:     make([]string, 0, len(def.Problems)),
	}
	if kaggleID, err := s.resolver.ResolveKaggleID(ctx, p.UserID); err == nil {
		row.KaggleID = kaggleID
	}

	for _, ref := range def.Problems {
		var raw, norm float64
		if p.Active {
			res := s.fetchOrDefault(ctx, ref, p.UserID)
			baseline, ok := p.Baselines[ref]
			if !ok {
				baseline = def.Baseline
			}
			raw = res.UserScore
			norm = scoring.Normalize(def.Direction, baseline, raw, res.MinScore, res.MaxScore)
		} else {
			frozen, err := s.CompDB.ReadFrozenScore(ctx, p.UserID, def.Type, ref)
			if err != nil {
				return competitiontypes.LeaderboardRow{}, fmt.Errorf("failed to read frozen score for %s/%s: %w", p.UserID, ref, err)
			}
			if frozen == nil {
				// Frozen flag without a frozen row means the freeze write
				// was interrupted; score the contest as zero rather than
				// resurrect the participant.
				s.logger.WarnContext(ctx, "Frozen participant has no frozen score row",
					attr.String("comp_type", string(def.Type)),
					attr.String("user_id", string(p.UserID)),
					attr.String("contest_ref", string(ref)),
				)
			} else {
				raw = frozen.Score
				norm = frozen.NormScore
			}
		}

		row.Total += norm
		row.Details = append(row.Details, fmt.Sprintf("%.2f (%.4f)", norm, raw))
	}
	return row, nil
}
