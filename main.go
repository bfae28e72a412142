package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/State-Of-The-Art-Club/sota-bot/app"
	"github.com/State-Of-The-Art-Club/sota-bot/config"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

func main() {
	cliApp := &cli.App{
		Name:  "sota-bot",
		Usage: "Discord bot running timed Kaggle competitions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				EnvVars: []string{"SOTA_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "path to a dotenv file loaded before the config",
				Value: ".env",
			},
		},
		Action: run,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// Missing dotenv files are fine; env vars may come from the environment.
	if err := godotenv.Load(c.String("env-file")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}

	if err := bot.Run(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Shutting down", attr.String("reason", "signal"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	bot.Close(shutdownCtx)
	return nil
}
