package linkservice

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	linktypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/profile"
	linkdb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/kagglelink/infrastructure/repositories"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/eventbus"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
	linkmetrics "github.com/State-Of-The-Art-Club/sota-bot/internal/observability/metrics/kagglelink"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/utils/results"
)

// LinkOperationResult is the standard return for link operations.
type LinkOperationResult = results.OperationResult

// LinkService manages Discord-to-Kaggle account links: the pending
// verification codes live in memory, verified links in Postgres.
type LinkService struct {
	LinkDB   linkdb.LinkDB
	profiles profile.Client
	EventBus eventbus.EventBus
	logger   *slog.Logger
	metrics  linkmetrics.LinkMetrics
	tracer   trace.Tracer

	mu      sync.Mutex
	pending map[competitiontypes.DiscordID]linktypes.PendingVerification

	serviceWrapper func(ctx context.Context, operationName string, serviceFunc func(ctx context.Context) (LinkOperationResult, error)) (LinkOperationResult, error)

	// newCode generates a verification code, injectable for tests.
	newCode func() string
}

// NewLinkService creates a new LinkService.
func NewLinkService(
	db linkdb.LinkDB,
	profiles profile.Client,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics linkmetrics.LinkMetrics,
	tracer trace.Tracer,
) *LinkService {
	s := &LinkService{
		LinkDB:   db,
		profiles: profiles,
		EventBus: bus,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		pending:  make(map[competitiontypes.DiscordID]linktypes.PendingVerification),
		newCode: func() string {
			return fmt.Sprintf("SOTA-%05d", rand.IntN(90000)+10000)
		},
	}
	s.serviceWrapper = s.withTelemetry
	return s
}

var _ Service = (*LinkService)(nil)

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func (s *LinkService) withTelemetry(
	ctx context.Context,
	operationName string,
	op func(ctx context.Context) (LinkOperationResult, error),
) (result LinkOperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = LinkOperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsSuccess() {
		s.metrics.RecordOperationSuccess(ctx, operationName)
	}
	return result, nil
}

// publishEvent marshals a payload and publishes it.
func (s *LinkService) publishEvent(ctx context.Context, topic string, payload interface{}) {
	msg, err := eventbus.NewMessage(payload, attr.CorrelationIDFromContext(ctx))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build event message",
			attr.String("topic", topic),
			attr.Error(err),
		)
		return
	}
	if err := s.EventBus.Publish(topic, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}

func (s *LinkService) setPending(discordID competitiontypes.DiscordID, p linktypes.PendingVerification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[discordID] = p
}

func (s *LinkService) takePending(discordID competitiontypes.DiscordID) (linktypes.PendingVerification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[discordID]
	return p, ok
}

func (s *LinkService) clearPending(discordID competitiontypes.DiscordID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, discordID)
}
