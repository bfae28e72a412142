package parsers

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// XLSXParser implements the Parser interface for Excel leaderboard exports.
type XLSXParser struct{}

// NewXLSXParser creates a new XLSX parser instance.
func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

// Parse reads the first sheet of an xlsx workbook as a leaderboard table.
func (p *XLSXParser) Parse(fileData []byte, fileName string) (*Leaderboard, error) {
	f, err := excelize.OpenReader(bytes.NewReader(fileData))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s has no sheets", fileName)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("leaderboard %s is empty", fileName)
	}

	scoreIdx, teamIdx, membersIdx, err := columnIndexes(rows[0])
	if err != nil {
		return nil, err
	}

	lb := &Leaderboard{}
	for _, record := range rows[1:] {
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
