// Package app wires configuration, storage, messaging, the services and the
// Discord gateway into one runnable bot process.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"

	competitionservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/application"
	competitionhandlers "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/handlers"
	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/kaggle"
	competitiondb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories"
	discoveryservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/discovery/application"
	linkservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/application"
	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/profile"
	linkdb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/repositories"
	"github.com/State-Of-The-Art-Club/sota-bot/config"
	"github.com/State-Of-The-Art-Club/sota-bot/discord"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/eventbus"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
	competitionmetrics "github.com/State-Of-The-Art-Club/sota-bot/internal/observability/metrics/competition"
	linkmetrics "github.com/State-Of-The-Art-Club/sota-bot/internal/observability/metrics/kagglelink"
)

// App holds every long-lived component of the bot process.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	db        *bun.DB
	bus       *eventbus.GoChannelEventBus
	obsServer *observability.Server
	router    *competitionhandlers.Router
	session   *discordgo.Session
	platform  *discord.Platform

	competitions *competitionservice.CompetitionService
	links        *linkservice.LinkService
	discovery    *discoveryservice.Service
}

// New wires the application. Nothing external is contacted yet: the database
// and Discord connections open in Run.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	compMetrics := competitionmetrics.NewPrometheusMetrics(promRegistry)
	linkMetrics := linkmetrics.NewPrometheusMetrics(promRegistry)
	tracer := otel.Tracer("sota-bot")

	bus := eventbus.NewGoChannelEventBus(logger)

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	// Guild and channel are bound in Run once the gateway reports them.
	platform := discord.NewPlatform(session, cfg.Discord.GuildID, "", logger)

	links := linkservice.NewLinkService(
		&linkdb.LinkDBImpl{DB: db},
		profile.NewHTTPClient(),
		bus,
		logger,
		linkMetrics,
		tracer,
	)

	runner := kaggle.NewExecRunner(cfg.Kaggle.Binary)
	fetcher := kaggle.NewCLIFetcher(runner, links, cfg.Kaggle.DataDir, cfg.Kaggle.FetchesPerMinute, logger)

	definitions, err := competitiondb.NewFileDefinitionStore(filepath.Join(cfg.Kaggle.DataDir, "competitions"))
	if err != nil {
		return nil, fmt.Errorf("failed to open definition store: %w", err)
	}

	competitions := competitionservice.NewCompetitionService(
		competitionservice.NewRegistry(),
		&competitiondb.CompetitionDBImpl{DB: db},
		definitions,
		fetcher,
		links,
		platform,
		bus,
		logger,
		compMetrics,
		tracer,
	)

	handlers := competitionhandlers.NewCompetitionHandlers(competitions, bus, logger)
	router, err := competitionhandlers.NewRouter(bus, handlers, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build message router: %w", err)
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		bus:          bus,
		obsServer:    observability.NewServer(cfg.Observability.MetricsAddress, promRegistry, logger),
		router:       router,
		session:      session,
		platform:     platform,
		competitions: competitions,
		links:        links,
		discovery:    discoveryservice.NewService(kaggle.NewClient(runner), logger),
	}, nil
}

// Run brings the process up: message router, Discord gateway, state
// recovery, and finally the command surface. It returns once everything is
// started; Close tears it down.
func (a *App) Run(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach postgres: %w", err)
	}

	a.obsServer.Start()

	go func() {
		if err := a.router.Run(ctx); err != nil {
			a.logger.Error("Message router stopped", attr.Error(err))
		}
	}()
	select {
	case <-a.router.Running():
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := a.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}

	guildID, channelID, err := a.resolveCompetitionsChannel()
	if err != nil {
		return err
	}
	a.platform.Bind(guildID, channelID)
	a.logger.InfoContext(ctx, "Bound to guild",
		attr.String("guild_id", guildID),
		attr.String("channel_id", channelID),
	)

	// Recovery runs before commands are accepted so a participant cannot
	// race their own rehydration.
	if err := a.competitions.RecoverCompetitions(ctx); err != nil {
		return fmt.Errorf("failed to recover competitions: %w", err)
	}

	commandRouter := discord.NewRouter(
		a.session,
		a.platform,
		a.competitions,
		a.links,
		a.discovery,
		a.cfg.Discord.CommandPrefix,
		a.session.State.User.ID,
		a.logger,
	)
	a.session.AddHandler(commandRouter.HandleMessage)

	a.logger.InfoContext(ctx, "Bot is up")
	return nil
}

// resolveCompetitionsChannel finds the configured guild (or the first one
// the gateway reported) and the text channel competition threads hang off.
func (a *App) resolveCompetitionsChannel() (guildID, channelID string, err error) {
	guildID = a.cfg.Discord.GuildID
	if guildID == "" {
		if len(a.session.State.Guilds) == 0 {
			return "", "", fmt.Errorf("bot is not in any guild")
		}
		guildID = a.session.State.Guilds[0].ID
	}

	channels, err := a.session.GuildChannels(guildID)
	if err != nil {
		return "", "", fmt.Errorf("failed to list guild channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == a.cfg.Discord.CompetitionsChannel {
			return guildID, ch.ID, nil
		}
	}
	return "", "", fmt.Errorf("no #%s text channel in guild %s", a.cfg.Discord.CompetitionsChannel, guildID)
}

// Close shuts everything down in reverse start order.
func (a *App) Close(ctx context.Context) {
	if err := a.session.Close(); err != nil {
		a.logger.Error("Failed to close discord session", attr.Error(err))
	}
	if err := a.router.Close(); err != nil {
		a.logger.Error("Failed to close message router", attr.Error(err))
	}
	if err := a.bus.Close(); err != nil {
		a.logger.Error("Failed to close event bus", attr.Error(err))
	}
	if err := a.obsServer.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to stop observability server", attr.Error(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database", attr.Error(err))
	}
}
