// Package testutils provides shared setup for integration tests that need a
// real Postgres instance.
package testutils

import (
	"context"
	"database/sql"
	"net/url"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	competitionmigrations "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories/migrations"
	linkmigrations "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/repositories/migrations"
)

// SetupTestDB starts a throwaway Postgres container, runs every module's
// migrations against it, and returns a connected bun.DB. The container is
// terminated when the test finishes.
func SetupTestDB(t *testing.T) *bun.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := pgContainer.Terminate(termCtx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	dsn, err := url.Parse(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	query := dsn.Query()
	query.Set("sslmode", "disable")
	dsn.RawQuery = query.Encode()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn.String())))
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close db: %v", err)
		}
	})

	for name, migrations := range map[string]*migrate.Migrations{
		"competition": competitionmigrations.Migrations,
		"kagglelink":  linkmigrations.Migrations,
	} {
		migrator := migrate.NewMigrator(db, migrations)
		if err := migrator.Init(ctx); err != nil {
			t.Fatalf("failed to init %s migrations: %v", name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			t.Fatalf("failed to run %s migrations: %v", name, err)
		}
	}

	return db
}
