// Package discoveryservice surfaces open Kaggle competitions for members
// looking for something to practice on. It is stateless: every call goes
// through the Kaggle CLI listing.
package discoveryservice

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/kaggle"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// Lister is the slice of the Kaggle client discovery consumes.
type Lister interface {
	ListOpenCompetitions(ctx context.Context) ([]kaggle.Competition, error)
}

// Service picks and describes open competitions.
type Service struct {
	lister Lister
	logger *slog.Logger

	// pick selects an index, injectable for tests.
	pick func(n int) int
}

// NewService creates a discovery service.
func NewService(lister Lister, logger *slog.Logger) *Service {
	return &Service{
		lister: lister,
		logger: logger,
		pick:   rand.IntN,
	}
}

// RandomCompetition returns one open competition at random, optionally
// filtered by category (case-insensitive substring).
func (s *Service) RandomCompetition(ctx context.Context, category string) (*kaggle.Competition, error) {
	comps, err := s.lister.ListOpenCompetitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}

	if category != "" {
		filtered := comps[:0]
		for _, c := range comps {
			if strings.Contains(strings.ToLower(c.Category), strings.ToLower(category)) {
				filtered = append(filtered, c)
			}
		}
		comps = filtered
	}

	if len(comps) == 0 {
		return nil, fmt.Errorf("no open competitions found")
	}

	chosen := comps[s.pick(len(comps))]
	s.logger.InfoContext(ctx, "Picked random competition",
		attr.String("ref", string(chosen.Ref)),
	)
	return &chosen, nil
}

// CompetitionDetail returns the listing row for one contest ref.
func (s *Service) CompetitionDetail(ctx context.Context, ref competitiontypes.ContestRef) (*kaggle.Competition, error) {
	comps, err := s.lister.ListOpenCompetitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	for _, c := range comps {
		if c.Ref == ref {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("competition %s not found in the open listing", ref)
}
