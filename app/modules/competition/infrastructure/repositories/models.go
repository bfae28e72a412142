package competitiondb

import (
	"github.com/uptrace/bun"
)

// ParticipantRow is one (user, competition, contest) membership row. A user
// joining a multi-contest competition produces one row per contest, all
// sharing the active flag and joined_at.
type ParticipantRow struct {
	bun.BaseModel `bun:"table:competition_participants,alias:cp"`

	UserID     string  `bun:"user_id,pk"`
	CompType   string  `bun:"comp_type,pk"`
	ContestRef string  `bun:"contest_ref,pk"`
	Baseline   float64 `bun:"baseline,notnull"`
	Active     bool    `bun:"active,notnull"`
	// JoinedAt is wall-clock unix seconds; recovery computes elapsed time
	// from it after a restart.
	JoinedAt int64 `bun:"joined_at,notnull"`
}

// FrozenScoreRow is a participant's frozen result for one contest.
type FrozenScoreRow struct {
	bun.BaseModel `bun:"table:frozen_scores,alias:fs"`

	UserID     string  `bun:"user_id,pk"`
	CompType   string  `bun:"comp_type,pk"`
	ContestRef string  `bun:"contest_ref,pk"`
	Score      float64 `bun:"score,notnull"`
	NormScore  float64 `bun:"norm_score,notnull"`
}
