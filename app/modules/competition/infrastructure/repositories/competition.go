package competitiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// CompetitionDBImpl is the concrete implementation of CompetitionDB using bun.
type CompetitionDBImpl struct {
	DB *bun.DB
}

var _ CompetitionDB = (*CompetitionDBImpl)(nil)

// UpsertParticipant writes a participant row, last-write-wins on the
// composite key so replaying a join or freeze cannot duplicate rows.
func (db *CompetitionDBImpl) UpsertParticipant(ctx context.Context, row *ParticipantRow) error {
	slog.DebugContext(ctx, "Executing CompetitionDBImpl.UpsertParticipant",
		slog.String("user_id", row.UserID),
		slog.String("comp_type", row.CompType),
		slog.String("contest_ref", row.ContestRef),
	)
	_, err := db.DB.NewInsert().
		Model(row).
		On("CONFLICT (user_id, comp_type, contest_ref) DO UPDATE").
		Set("baseline = EXCLUDED.baseline").
		Set("active = EXCLUDED.active").
		Set("joined_at = EXCLUDED.joined_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

// DeleteParticipant removes every contest row for one user in one
// competition.
func (db *CompetitionDBImpl) DeleteParticipant(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType) error {
	_, err := db.DB.NewDelete().
		Model((*ParticipantRow)(nil)).
		Where("user_id = ?", string(userID)).
		Where("comp_type = ?", string(compType)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return nil
}

// DeleteAllParticipants removes every participant row for a competition.
func (db *CompetitionDBImpl) DeleteAllParticipants(ctx context.Context, compType competitiontypes.CompetitionType) error {
	_, err := db.DB.NewDelete().
		Model((*ParticipantRow)(nil)).
		Where("comp_type = ?", string(compType)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	return nil
}

// ReadParticipants returns every participant row for a competition, ordered
// by join time so recovery and leaderboards see a stable encounter order.
func (db *CompetitionDBImpl) ReadParticipants(ctx context.Context, compType competitiontypes.CompetitionType) ([]ParticipantRow, error) {
	var rows []ParticipantRow
	err := db.DB.NewSelect().
		Model(&rows).
		Where("comp_type = ?", string(compType)).
		Order("joined_at ASC", "user_id ASC", "contest_ref ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}
	return rows, nil
}

// UpsertFrozenScore writes a frozen score, idempotent on the composite key.
func (db *CompetitionDBImpl) UpsertFrozenScore(ctx context.Context, row *FrozenScoreRow) error {
	slog.DebugContext(ctx, "Executing CompetitionDBImpl.UpsertFrozenScore",
		slog.String("user_id", row.UserID),
		slog.String("comp_type", row.CompType),
		slog.String("contest_ref", row.ContestRef),
	)
	_, err := db.DB.NewInsert().
		Model(row).
		On("CONFLICT (user_id, comp_type, contest_ref) DO UPDATE").
		Set("score = EXCLUDED.score").
		Set("norm_score = EXCLUDED.norm_score").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert frozen score: %w", err)
	}
	return nil
}

// DeleteFrozenScores removes every frozen score for one user in one
// competition.
func (db *CompetitionDBImpl) DeleteFrozenScores(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType) error {
	_, err := db.DB.NewDelete().
		Model((*FrozenScoreRow)(nil)).
		Where("user_id = ?", string(userID)).
		Where("comp_type = ?", string(compType)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete frozen scores: %w", err)
	}
	return nil
}

// ReadFrozenScore returns one frozen score row, nil when absent.
func (db *CompetitionDBImpl) ReadFrozenScore(ctx context.Context, userID competitiontypes.DiscordID, compType competitiontypes.CompetitionType, contestRef competitiontypes.ContestRef) (*FrozenScoreRow, error) {
	row := new(FrozenScoreRow)
	err := db.DB.NewSelect().
		Model(row).
		Where("user_id = ?", string(userID)).
		Where("comp_type = ?", string(compType)).
		Where("contest_ref = ?", string(contestRef)).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read frozen score: %w", err)
	}
	return row, nil
}

// DeleteAllFrozenScores removes every frozen score for a competition.
func (db *CompetitionDBImpl) DeleteAllFrozenScores(ctx context.Context, compType competitiontypes.CompetitionType) error {
	_, err := db.DB.NewDelete().
		Model((*FrozenScoreRow)(nil)).
		Where("comp_type = ?", string(compType)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete frozen scores: %w", err)
	}
	return nil
}
