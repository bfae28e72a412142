package kaggle

import (
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// FailureKind classifies why a leaderboard fetch could not produce real
// scores. Callers use it for logging and metrics; scoring always proceeds on
// the safe default.
type FailureKind string

const (
	FailureNone         FailureKind = ""
	FailureNoIdentity   FailureKind = "no_identity"
	FailureCLI          FailureKind = "cli"
	FailureNoTable      FailureKind = "no_table"
	FailureUnparseable  FailureKind = "unparseable"
	FailureScratchDir   FailureKind = "scratch_dir"
	FailureRateLimited  FailureKind = "rate_limited"
)

// FetchResult is the typed outcome of one leaderboard fetch.
type FetchResult struct {
	UserScore float64
	MinScore  float64
	MaxScore  float64

	FailureKind FailureKind
	Err         error
}

// Failed reports whether the fetch degraded.
func (r FetchResult) Failed() bool {
	return r.FailureKind != FailureNone
}

// SafeDefault is the fallback result callers substitute when a fetch fails:
// zero scores with a non-zero max so normalization never divides by zero.
func SafeDefault(kind FailureKind, err error) FetchResult {
	return FetchResult{UserScore: 0.0, MinScore: 0.0, MaxScore: 1.0, FailureKind: kind, Err: err}
}

// Competition is one row of the open-competitions listing, consumed by the
// discovery commands.
type Competition struct {
	Ref      competitiontypes.ContestRef
	Title    string
	URL      string
	Deadline string
	Category string
	Reward   string
}
