package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	competitionmigrations "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories/migrations"
	linkmigrations "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/repositories/migrations"
	"github.com/State-Of-The-Art-Club/sota-bot/config"
)

func main() {
	cliApp := &cli.App{
		Name:  "bun",
		Usage: "database migration tool",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				EnvVars: []string{"SOTA_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			newMigrateCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openMigrators(c *cli.Context) (*bun.DB, map[string]*migrate.Migrator, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())

	migrators := map[string]*migrate.Migrator{
		"competition": migrate.NewMigrator(db, competitionmigrations.Migrations),
		"kagglelink":  migrate.NewMigrator(db, linkmigrations.Migrations),
	}
	return db, migrators, nil
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					db, migrators, err := openMigrators(c)
					if err != nil {
						return err
					}
					defer db.Close()
					for moduleName, migrator := range migrators {
						fmt.Printf("Initializing migrations for module: %s\n", moduleName)
						if err := migrator.Init(c.Context); err != nil {
							return fmt.Errorf("failed to init module %s: %w", moduleName, err)
						}
					}
					return nil
				},
			},
			{
				Name:  "migrate",
				Usage: "run pending migrations",
				Action: func(c *cli.Context) error {
					db, migrators, err := openMigrators(c)
					if err != nil {
						return err
					}
					defer db.Close()
					for moduleName, migrator := range migrators {
						group, err := migrator.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No new migrations for module: %s\n", moduleName)
						} else {
							fmt.Printf("Migrated module %s to %s\n", moduleName, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					db, migrators, err := openMigrators(c)
					if err != nil {
						return err
					}
					defer db.Close()
					for moduleName, migrator := range migrators {
						group, err := migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", moduleName)
						} else {
							fmt.Printf("Rolled back module %s to %s\n", moduleName, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "create_go",
				Usage: "create a Go migration for a module",
				Action: func(c *cli.Context) error {
					db, migrators, err := openMigrators(c)
					if err != nil {
						return err
					}
					defer db.Close()
					moduleName := c.Args().First()
					migrator, ok := migrators[moduleName]
					if !ok {
						return fmt.Errorf("unknown module: %q", moduleName)
					}
					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration for module %s: %s (%s)\n", moduleName, mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migration status",
				Action: func(c *cli.Context) error {
					db, migrators, err := openMigrators(c)
					if err != nil {
						return err
					}
					defer db.Close()
					for moduleName, migrator := range migrators {
						ms, err := migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", moduleName)
						fmt.Printf("  %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}
