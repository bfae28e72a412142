package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	competitiondb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating competition_participants table...")
			if _, err := db.NewCreateTable().Model((*competitiondb.ParticipantRow)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create competition_participants table: %w", err)
			}
			fmt.Println("Creating frozen_scores table...")
			if _, err := db.NewCreateTable().Model((*competitiondb.FrozenScoreRow)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create frozen_scores table: %w", err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping frozen_scores table...")
			if _, err := db.NewDropTable().Model((*competitiondb.FrozenScoreRow)(nil)).IfExists().Exec(ctx); err != nil {
				return err
			}
			fmt.Println("Dropping competition_participants table...")
			if _, err := db.NewDropTable().Model((*competitiondb.ParticipantRow)(nil)).IfExists().Exec(ctx); err != nil {
				return err
			}
			return nil
		},
	)
}
