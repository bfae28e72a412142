package competitiontypes

import (
	"fmt"
	"strings"
	"time"
)

// CompetitionType is the recurrence key identifying an active competition.
// At most one definition per type exists at a time.
type CompetitionType string

const (
	CompetitionWeekly   CompetitionType = "weekly"
	CompetitionBiweekly CompetitionType = "biweekly"
	CompetitionMonthly  CompetitionType = "monthly"
)

// ParseCompetitionType normalizes and validates a competition type literal.
func ParseCompetitionType(s string) (CompetitionType, error) {
	switch t := CompetitionType(strings.ToLower(strings.TrimSpace(s))); t {
	case CompetitionWeekly, CompetitionBiweekly, CompetitionMonthly:
		return t, nil
	default:
		return "", fmt.Errorf("unknown competition type %q (want weekly, biweekly or monthly)", s)
	}
}

// Direction says whether a higher or a lower leaderboard score is better.
type Direction string

const (
	DirectionHigher Direction = "higher"
	DirectionLower  Direction = "lower"
)

// ParseDirection normalizes and validates a scoring direction literal.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirectionHigher, DirectionLower:
		return d, nil
	default:
		return "", fmt.Errorf("unknown scoring direction %q (want higher or lower)", s)
	}
}

// DiscordID identifies a Discord user.
type DiscordID string

// KaggleID identifies a Kaggle account.
type KaggleID string

// ContestRef is Kaggle's slug for one leaderboard-bearing competition.
type ContestRef string

// contestLinkMarker is the URL fragment a Kaggle competition link carries.
const contestLinkMarker = "kaggle.com/competitions/"

// ExtractContestRefs pulls contest slugs out of Kaggle competition links.
// Links that are not Kaggle competition URLs are skipped.
func ExtractContestRefs(links []string) []ContestRef {
	var refs []ContestRef
	for _, link := range links {
		if !strings.Contains(link, contestLinkMarker) {
			continue
		}
		trimmed := strings.TrimRight(link, "/")
		parts := strings.Split(trimmed, "/")
		slug := parts[len(parts)-1]
		if slug != "" {
			refs = append(refs, ContestRef(slug))
		}
	}
	return refs
}

// Definition describes one active competition.
type Definition struct {
	Type               CompetitionType `json:"type"`
	Name               string          `json:"name"`
	DurationMinutes    int             `json:"duration_minutes"`
	Direction          Direction       `json:"direction"`
	Baseline           float64         `json:"baseline"`
	Problems           []ContestRef    `json:"problems"`
	ThreadID           string          `json:"thread_id"`
	DiscussionThreadID string          `json:"discussion_thread_id"`
}

// Duration returns the participation window.
func (d *Definition) Duration() time.Duration {
	return time.Duration(d.DurationMinutes) * time.Minute
}

// Validate checks the definition invariants.
func (d *Definition) Validate() error {
	if _, err := ParseCompetitionType(string(d.Type)); err != nil {
		return err
	}
	if d.DurationMinutes <= 0 {
		return fmt.Errorf("duration must be positive, got %d", d.DurationMinutes)
	}
	if _, err := ParseDirection(string(d.Direction)); err != nil {
		return err
	}
	if len(d.Problems) == 0 {
		return fmt.Errorf("competition needs at least one contest")
	}
	if len(d.Problems) > 3 {
		return fmt.Errorf("competition supports at most 3 contests, got %d", len(d.Problems))
	}
	return nil
}

// Participant is one user's membership in a competition. Baselines holds the
// join-time snapshot score per contest; Active flips to false exactly once,
// at freeze.
type Participant struct {
	UserID    DiscordID              `json:"user_id"`
	Baselines map[ContestRef]float64 `json:"baselines"`
	Active    bool                   `json:"active"`
	JoinedAt  time.Time              `json:"joined_at"`
}

// FrozenScore is a participant's final score for one contest, written at
// freeze and never mutated afterwards.
type FrozenScore struct {
	UserID     DiscordID       `json:"user_id"`
	Type       CompetitionType `json:"comp_type"`
	ContestRef ContestRef      `json:"contest_ref"`
	Score      float64         `json:"score"`
	NormScore  float64         `json:"norm_score"`
}

// LeaderboardRow is one rendered leaderboard entry. Details holds one
// "norm (raw)" string per contest, in definition order.
type LeaderboardRow struct {
	DisplayName string   `json:"display_name"`
	KaggleID    KaggleID `json:"kaggle_id"`
	Total       float64  `json:"total"`
	Details     []string `json:"details"`
}

// TimeRemainingRow is one participant's remaining participation window.
type TimeRemainingRow struct {
	DisplayName string        `json:"display_name"`
	Remaining   time.Duration `json:"remaining"`
}
