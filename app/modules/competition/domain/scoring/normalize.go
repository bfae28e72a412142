package scoring

import (
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// epsilon keeps the denominator positive when max <= baseline (or
// baseline <= min for the lower direction).
const epsilon = 1e-9

// Normalize maps a raw score to a 0-100 improvement value relative to
// baseline. For "higher" the score is scaled against the distance from
// baseline to the leaderboard max; for "lower" against the distance from
// baseline down to the leaderboard min. The result is clamped to [0, 100].
func Normalize(direction competitiontypes.Direction, baseline, score, min, max float64) float64 {
	var raw float64
	switch direction {
	case competitiontypes.DirectionLower:
		denom := baseline - min
		if denom < epsilon {
			denom = epsilon
		}
		raw = (baseline - score) / denom * 100
	default:
		denom := max - baseline
		if denom < epsilon {
			denom = epsilon
		}
		raw = (score - baseline) / denom * 100
	}

	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}
