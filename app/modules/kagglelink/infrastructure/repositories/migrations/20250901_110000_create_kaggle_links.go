package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	linkdb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating kaggle_links table...")
			if _, err := db.NewCreateTable().Model((*linkdb.LinkRow)(nil)).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create kaggle_links table: %w", err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping kaggle_links table...")
			if _, err := db.NewDropTable().Model((*linkdb.LinkRow)(nil)).IfExists().Exec(ctx); err != nil {
				return err
			}
			return nil
		},
	)
}
