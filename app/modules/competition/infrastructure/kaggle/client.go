package kaggle

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// Client exposes the non-leaderboard kaggle CLI surface.
type Client struct {
	runner CommandRunner
}

// NewClient creates a CLI client on the given runner.
func NewClient(runner CommandRunner) *Client {
	return &Client{runner: runner}
}

// ListOpenCompetitions returns the CLI's open-competition listing.
func (c *Client) ListOpenCompetitions(ctx context.Context) ([]Competition, error) {
	out, err := c.runner.Run(ctx, "competitions", "list", "--csv")
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	return parseCompetitionList(out)
}

func parseCompetitionList(data []byte) ([]Competition, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("empty competition listing")
	}

	idx := map[string]int{}
	for i, col := range header {
		idx[normalizeListHeader(col)] = i
	}
	refIdx, ok := idx["ref"]
	if !ok {
		return nil, fmt.Errorf("no ref column in competition listing")
	}

	var comps []Competition
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse competition listing: %w", err)
		}

		ref := field(record, refIdx)
		if ref == "" {
			continue
		}
		// The ref column sometimes carries a full URL; the slug is its last
		// path segment either way.
		slug := ref
		if i := strings.LastIndex(strings.TrimRight(ref, "/"), "/"); i >= 0 {
			slug = strings.TrimRight(ref, "/")[i+1:]
		}

		comp := Competition{
			Ref:      competitiontypes.ContestRef(slug),
			Title:    field(record, lookup(idx, "title")),
			Deadline: field(record, lookup(idx, "deadline")),
			Category: field(record, lookup(idx, "category")),
			Reward:   field(record, lookup(idx, "reward")),
		}
		if comp.Title == "" {
			comp.Title = titleFromSlug(slug)
		}
		comp.URL = "https://www.kaggle.com/competitions/" + slug
		comps = append(comps, comp)
	}
	return comps, nil
}

// titleFromSlug turns "titanic-survival" into "Titanic Survival".
func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func normalizeListHeader(col string) string {
	return strings.ToLower(strings.TrimSpace(col))
}

func lookup(idx map[string]int, key string) int {
	if i, ok := idx[key]; ok {
		return i
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
