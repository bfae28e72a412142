package competitionhandlers

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	competitionservice "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/application"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/eventbus"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
)

// CompetitionHandlers consumes competition events off the bus and dispatches
// them into the service. Success events are published by the service itself;
// the handlers only add the failure notifications that belong to the
// messaging layer.
type CompetitionHandlers struct {
	service competitionservice.Service
	bus     eventbus.EventBus
	logger  *slog.Logger
}

var _ Handlers = (*CompetitionHandlers)(nil)

// NewCompetitionHandlers creates a new CompetitionHandlers instance.
func NewCompetitionHandlers(service competitionservice.Service, bus eventbus.EventBus, logger *slog.Logger) *CompetitionHandlers {
	return &CompetitionHandlers{
		service: service,
		bus:     bus,
		logger:  logger,
	}
}

// publish sends one payload, carrying the inbound correlation ID forward.
func (h *CompetitionHandlers) publish(inbound *message.Message, topic string, payload interface{}) {
	correlationID := inbound.Metadata.Get(middleware.CorrelationIDMetadataKey)
	msg, err := eventbus.NewMessage(payload, correlationID)
	if err != nil {
		h.logger.Error("Failed to build outbound message",
			attr.String("topic", topic),
			attr.Error(err),
		)
		return
	}
	if err := h.bus.Publish(topic, msg); err != nil {
		h.logger.Error("Failed to publish outbound message",
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}
