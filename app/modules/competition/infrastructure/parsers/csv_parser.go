package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVParser implements the Parser interface for CSV leaderboard exports.
type CSVParser struct{}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// normalizeHeader lowercases a column name and strips spaces and
// underscores, so "TeamMemberUserNames", "team_member_user_names" and
// "Team Member User Names" all match.
func normalizeHeader(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	col = strings.ReplaceAll(col, " ", "")
	return strings.ReplaceAll(col, "_", "")
}

// columnIndexes locates the score, team-name and members columns in a
// header row. The score column is required.
func columnIndexes(header []string) (scoreIdx, teamIdx, membersIdx int, err error) {
	scoreIdx, teamIdx, membersIdx = -1, -1, -1
	for i, col := range header {
		switch normalizeHeader(col) {
		case "score", "publicscore":
			if scoreIdx < 0 {
				scoreIdx = i
			}
		case "teamname":
			teamIdx = i
		case "teammemberusernames", "teammembers":
			membersIdx = i
		}
	}
	if scoreIdx < 0 {
		return 0, 0, 0, fmt.Errorf("no score column found in header %v", header)
	}
	return scoreIdx, teamIdx, membersIdx, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Parse reads CSV data and returns the leaderboard rows. Rows whose score
// cell is not numeric are kept with ScoreValid=false so the caller can
// decide its fallback.
func (p *CSVParser) Parse(fileData []byte, fileName string) (*Leaderboard, error) {
	reader := csv.NewReader(strings.NewReader(string(fileData)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("leaderboard %s is empty", fileName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	scoreIdx, teamIdx, membersIdx, err := columnIndexes(header)
	if err != nil {
		return nil, err
	}

	lb := &Leaderboard{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV row: %w", err)
		}

		entry := Entry{
			TeamName: cell(record, teamIdx),
			Members:  cell(record, membersIdx),
		}
		if score, perr := strconv.ParseFloat(cell(record, scoreIdx), 64); perr == nil {
			entry.Score = score
			entry.ScoreValid = true
		}
		lb.Entries = append(lb.Entries, entry)
	}
	return lb, nil
}
