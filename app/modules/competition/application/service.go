package competitionservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	competitionevents "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/events"
	competitiontypes "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/domain/types"
	"github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/kaggle"
	competitiondb "github.com/State-Of-The-Art-Club/sota-bot/app/modules/competition/infrastructure/repositories"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/eventbus"
	"github.com/State-Of-The-Art-Club/sota-bot/internal/observability/attr"
	competitionmetrics "github.com/State-Of-The-Art-Club/sota-bot/internal/observability/metrics/competition"
)

// CompetitionService is the lifecycle manager: it owns the registry of
// active competitions, schedules and recovers freeze timers, and orchestrates
// every competition operation.
type CompetitionService struct {
	registry    *Registry
	CompDB      competitiondb.CompetitionDB
	Definitions competitiondb.DefinitionStore
	fetcher     kaggle.Fetcher
	resolver    kaggle.IdentityResolver
	platform    ChatPlatform
	EventBus    eventbus.EventBus
	logger      *slog.Logger
	metrics     competitionmetrics.CompetitionMetrics
	tracer      trace.Tracer

	// serviceWrapper is swapped by tests for a pass-through.
	serviceWrapper func(ctx context.Context, operationName string, compType competitiontypes.CompetitionType, serviceFunc func(ctx context.Context) (CompetitionOperationResult, error)) (CompetitionOperationResult, error)

	// now is the clock, injectable for recovery tests.
	now func() time.Time
}

var _ Service = (*CompetitionService)(nil)

// NewCompetitionService creates a new CompetitionService.
func NewCompetitionService(
	registry *Registry,
	compDB competitiondb.CompetitionDB,
	definitions competitiondb.DefinitionStore,
	fetcher kaggle.Fetcher,
	resolver kaggle.IdentityResolver,
	platform ChatPlatform,
	bus eventbus.EventBus,
	logger *slog.Logger,
	metrics competitionmetrics.CompetitionMetrics,
	tracer trace.Tracer,
) *CompetitionService {
	s := &CompetitionService{
		registry:    registry,
		CompDB:      compDB,
		Definitions: definitions,
		fetcher:     fetcher,
		resolver:    resolver,
		platform:    platform,
		EventBus:    bus,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		now:         time.Now,
	}
	s.serviceWrapper = s.withTelemetry
	return s
}

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery.
func (s *CompetitionService) withTelemetry(
	ctx context.Context,
	operationName string,
	compType competitiontypes.CompetitionType,
	op func(ctx context.Context) (CompetitionOperationResult, error),
) (result CompetitionOperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("comp_type", string(compType)),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, string(compType))

	startTime := s.now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, string(compType), time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("comp_type", string(compType)),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, string(compType))
			span.RecordError(err)
			result = CompetitionOperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("comp_type", string(compType)),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, string(compType))
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("comp_type", string(compType)),
			attr.Any("failure_payload", result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, operationName+" completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("comp_type", string(compType)),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName, string(compType))
	}

	return result, nil
}

// publishEvent marshals a payload and publishes it, carrying the correlation
// ID from the context through to the message metadata.
func (s *CompetitionService) publishEvent(ctx context.Context, topic string, payload interface{}) {
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

// publishFreezeDue is the timer-fire callback: it hands the freeze over to
// the event bus so the freeze handler processes it off the timer goroutine.
func (s *CompetitionService) publishFreezeDue(compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID) {
	payload := competitionevents.ParticipantFreezeDuePayload{Type: compType, UserID: userID}
	msg, err := eventbus.NewMessage(payload, "")
	if err != nil {
		s.logger.Error("Failed to build freeze-due message",
			attr.String("comp_type", string(compType)),
			attr.String("user_id", string(userID)),
			attr.Error(err),
		)
		return
	}
	s.metrics.RecordFreezeFired(context.Background(), string(compType))
	if err := s.EventBus.Publish(competitionevents.ParticipantFreezeDue, msg); err != nil {
		s.logger.Error("Failed to publish freeze-due event",
			attr.String("comp_type", string(compType)),
			attr.String("user_id", string(userID)),
			attr.Error(err),
		)
	}
}

// scheduleFreeze arms the tracked timer for one participant.
func (s *CompetitionService) scheduleFreeze(ctx context.Context, compType competitiontypes.CompetitionType, userID competitiontypes.DiscordID, delay time.Duration) {
	s.registry.ScheduleFreeze(compType, userID, delay, func() {
		s.publishFreezeDue(compType, userID)
	})
	s.metrics.RecordFreezeScheduled(ctx, string(compType))
	s.logger.InfoContext(ctx, "Freeze scheduled",
		attr.String("comp_type", string(compType)),
		attr.String("user_id", string(userID)),
		attr.Duration("delay", delay),
	)
}

// fetchOrDefault runs one leaderboard fetch and applies the safe-default
// policy: a degraded fetch is logged and counted, never propagated.
func (s *CompetitionService) fetchOrDefault(ctx context.Context, contestRef competitiontypes.ContestRef, userID competitiontypes.DiscordID) kaggle.FetchResult {
	res := s.fetcher.Fetch(ctx, contestRef, userID)
	if res.Failed() {
		s.metrics.RecordFetchFailure(ctx, string(contestRef), string(res.FailureKind))
		s.logger.WarnContext(ctx, "Leaderboard fetch degraded to safe default",
			attr.String("contest_ref", string(contestRef)),
			attr.String("user_id", string(userID)),
			attr.String("failure_kind", string(res.FailureKind)),
			attr.Error(res.Err),
		)
	}
	return res
}
