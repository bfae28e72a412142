package kaggle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/parsers"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// IdentityResolver resolves a Discord user to their linked Kaggle account.
// The kagglelink module provides the implementation.
type IdentityResolver interface {
	ResolveKaggleID(ctx context.Context, userID competitiontypes.DiscordID) (competitiontypes.KaggleID, error)
}

// Fetcher downloads and parses a contest leaderboard for one user.
type Fetcher interface {
	Fetch(ctx context.Context, contestRef competitiontypes.ContestRef, userID competitiontypes.DiscordID) FetchResult
}

// CLIFetcher implements Fetcher on top of the kaggle CLI. It never returns
// an error: every failure is folded into the FetchResult so scoring keeps
// working through Kaggle outages.
type CLIFetcher struct {
	runner   CommandRunner
	resolver IdentityResolver
	factory  *parsers.Factory
	baseDir  string
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var _ Fetcher = (*CLIFetcher)(nil)

// NewCLIFetcher wires the CLI fetcher. fetchesPerMinute caps leaderboard
// downloads across all competitions.
func NewCLIFetcher(runner CommandRunner, resolver IdentityResolver, baseDir string, fetchesPerMinute int, logger *slog.Logger) *CLIFetcher {
	return &CLIFetcher{
		runner:   runner,
		resolver: resolver,
		factory:  parsers.NewFactory(),
		baseDir:  baseDir,
		limiter:  rate.NewLimiter(rate.Limit(float64(fetchesPerMinute)/60.0), fetchesPerMinute),
		logger:   logger,
	}
}

// Fetch downloads the current leaderboard for contestRef and extracts the
// user's score plus the running min/max of the score column.
func (f *CLIFetcher) Fetch(ctx context.Context, contestRef competitiontypes.ContestRef, userID competitiontypes.DiscordID) FetchResult {
	kaggleID, err := f.resolver.ResolveKaggleID(ctx, userID)
	if err != nil || kaggleID == "" {
		f.logger.WarnContext(ctx, "No kaggle identity for user",
			attr.String("user_id", string(userID)),
			attr.String("contest_ref", string(contestRef)),
		)
		return SafeDefault(FailureNoIdentity, err)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return SafeDefault(FailureRateLimited, err)
	}

	scratch := filepath.Join(f.baseDir, "leaderboard", fmt.Sprintf("%s_latest", contestRef))
	if err := resetDir(scratch); err != nil {
		return SafeDefault(FailureScratchDir, err)
	}

	if _, err := f.runner.Run(ctx, "competitions", "leaderboard", string(contestRef), "--download", "-p", scratch); err != nil {
		f.logger.WarnContext(ctx, "Leaderboard download failed",
			attr.String("contest_ref", string(contestRef)),
			attr.Error(err),
		)
		return SafeDefault(FailureCLI, err)
	}

	tablePath, err := locateTable(scratch)
	if err != nil {
		return SafeDefault(FailureNoTable, err)
	}

	data, err := os.ReadFile(tablePath)
	if err != nil {
		return SafeDefault(FailureNoTable, err)
	}

	parser, err := f.factory.GetParser(filepath.Base(tablePath))
	if err != nil {
		return SafeDefault(FailureUnparseable, err)
	}
	lb, err := parser.Parse(data, filepath.Base(tablePath))
	if err != nil {
		return SafeDefault(FailureUnparseable, err)
	}

	return scoreFor(lb, kaggleID)
}

// scoreFor scans the leaderboard for the user's row and tracks min/max of
// the score column. With no valid numeric rows, min and max collapse onto
// the user score so normalization never divides by zero.
func scoreFor(lb *parsers.Leaderboard, kaggleID competitiontypes.KaggleID) FetchResult {
	needle := strings.ToLower(string(kaggleID))

	var userScore, minScore, maxScore float64
	haveAny := false
	for _, entry := range lb.Entries {
		if !entry.ScoreValid {
			continue
		}
		if !haveAny {
			minScore, maxScore = entry.Score, entry.Score
			haveAny = true
		} else {
			if entry.Score < minScore {
				minScore = entry.Score
			}
			if entry.Score > maxScore {
				maxScore = entry.Score
			}
		}
		if strings.Contains(strings.ToLower(entry.Members), needle) ||
			strings.EqualFold(entry.TeamName, string(kaggleID)) {
			userScore = entry.Score
		}
	}

	if !haveAny {
		return FetchResult{UserScore: userScore, MinScore: userScore, MaxScore: userScore}
	}
	return FetchResult{UserScore: userScore, MinScore: minScore, MaxScore: maxScore}
}

// resetDir wipes and recreates a scratch directory so stale files from a
// previous fetch can never be parsed as current.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to wipe scratch dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}
	return nil
}

// locateTable extracts any downloaded archive in dir, then returns the first
// tabular file found.
func locateTable(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".zip") {
			continue
		}
		archive := filepath.Join(dir, entry.Name())
		if err := extractZip(archive, dir); err != nil {
			return "", err
		}
		if err := os.Remove(archive); err != nil {
			return "", err
		}
	}

	entries, err = os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".xlsx") {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no leaderboard table in %s", dir)
}
