package linkdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
)

// LinkDBImpl is the concrete implementation of LinkDB using bun.
type LinkDBImpl struct {
	DB *bun.DB
}

var _ LinkDB = (*LinkDBImpl)(nil)

// FindByDiscordID returns the user's link, nil when absent.
func (db *LinkDBImpl) FindByDiscordID(ctx context.Context, discordID competitiontypes.DiscordID) (*LinkRow, error) {
	row := new(LinkRow)
	err := db.DB.NewSelect().
		Model(row).
		Where("discord_id = ?", string(discordID)).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link by discord id: %w", err)
	}
	return row, nil
}

// FindByKaggleID returns the link claiming a Kaggle account, nil when
// unclaimed.
func (db *LinkDBImpl) FindByKaggleID(ctx context.Context, kaggleID competitiontypes.KaggleID) (*LinkRow, error) {
	row := new(LinkRow)
	err := db.DB.NewSelect().
		Model(row).
		Where("kaggle_id = ?", string(kaggleID)).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link by kaggle id: %w", err)
	}
	return row, nil
}

// UpsertLink writes a link, last-write-wins on discord_id.
func (db *LinkDBImpl) UpsertLink(ctx context.Context, row *LinkRow) error {
	_, err := db.DB.NewInsert().
		Model(row).
		On("CONFLICT (discord_id) DO UPDATE").
		Set("kaggle_id = EXCLUDED.kaggle_id").
		Set("verified = EXCLUDED.verified").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert link: %w", err)
	}
	return nil
}

// DeleteLink removes a user's link and reports whether one existed.
func (db *LinkDBImpl) DeleteLink(ctx context.Context, discordID competitiontypes.DiscordID) (bool, error) {
	res, err := db.DB.NewDelete().
		Model((*LinkRow)(nil)).
		Where("discord_id = ?", string(discordID)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// ListLinks returns every link ordered by kaggle_id.
func (db *LinkDBImpl) ListLinks(ctx context.Context) ([]LinkRow, error) {
	var rows []LinkRow
	err := db.DB.NewSelect().
		Model(&rows).
		Order("kaggle_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return rows, nil
}
