package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// EventBus is the messaging surface the modules publish and subscribe on.
type EventBus interface {
	Publish(topic string, messages ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// GoChannelEventBus implements EventBus on watermill's in-process gochannel
// Pub/Sub. The bot is a single process, so the bus does not need to leave it;
// handlers are still decoupled from publishers the same way they would be
// over a broker.
type GoChannelEventBus struct {
	pubSub *gochannel.GoChannel
}

var _ EventBus = (*GoChannelEventBus)(nil)

// NewGoChannelEventBus creates the in-process event bus.
func NewGoChannelEventBus(logger *slog.Logger) *GoChannelEventBus {
	return &GoChannelEventBus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewSlogLogger(logger),
		),
	}
}

func (b *GoChannelEventBus) Publish(topic string, messages ...*message.Message) error {
	if err := b.pubSub.Publish(topic, messages...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (b *GoChannelEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return ch, nil
}

func (b *GoChannelEventBus) Close() error {
	return b.pubSub.Close()
}

// PubSub exposes the underlying gochannel Pub/Sub for router wiring.
func (b *GoChannelEventBus) PubSub() *gochannel.GoChannel {
	return b.pubSub
}

// NewMessage marshals payload to JSON and wraps it in a watermill message
// with a fresh UUID and the given correlation ID (a new one when empty).
func NewMessage(payload interface{}, correlationID string) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(middleware.CorrelationIDMetadataKey, correlationID)
	return msg, nil
}
