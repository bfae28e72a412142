package competitionhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/eventbus"
)

// Router owns the watermill message router for the competition module.
type Router struct {
	router *message.Router
}

// NewRouter builds the router with the module's middleware stack and
// subscribes the handlers to their topics.
func NewRouter(bus *eventbus.GoChannelEventBus, handlers Handlers, logger *slog.Logger) (*Router, error) {
	wmLogger := watermill.NewSlogLogger(logger)
	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	router.AddNoPublisherHandler(
		"competition.freeze_due",
		competitionevents.ParticipantFreezeDue,
		bus.PubSub(),
		handlers.HandleParticipantFreezeDue,
	)

	return &Router{router: router}, nil
}

// Run blocks until the context is cancelled.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that closes once the router is ready.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}
