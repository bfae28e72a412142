package parsers

// Entry is one leaderboard row. Members carries the raw
// team-member-usernames cell; ScoreValid is false when the score cell did
// not parse as a number.
type Entry struct {
	TeamName   string
	Members    string
	Score      float64
	ScoreValid bool
}

// Leaderboard is a parsed leaderboard export.
type Leaderboard struct {
	Entries []Entry
}

// Parser turns a leaderboard export file into rows.
type Parser interface {
	Parse(fileData []byte, fileName string) (*Leaderboard, error)
}
