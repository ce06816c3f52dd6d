package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
	"github.com/spec-kit/retailer-dashboard/internal/events"
	"github.com/spec-kit/retailer-dashboard/internal/repository"
)

// persistTimeout bounds a single audit insert.
const persistTimeout = 2 * time.Second

// AccessAuditWorker records session lifecycle, cache invalidation and access denial events.
type AccessAuditWorker struct {
	repo   repository.AccessAuditRepository
	logger *zap.Logger
}

// NewAccessAuditWorker creates the worker. repo may be nil, in which case denials are only logged.
func NewAccessAuditWorker(repo repository.AccessAuditRepository, logger *zap.Logger) *AccessAuditWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessAuditWorker{repo: repo, logger: logger}
}

// Start subscribes the worker's handlers.
func (w *AccessAuditWorker) Start(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventAccessDenied, w.handleAccessDenied)
	dispatcher.Subscribe(events.EventSessionCreated, w.handleSession)
	dispatcher.Subscribe(events.EventSessionCleared, w.handleSession)
	dispatcher.Subscribe(events.EventCacheInvalidated, w.handleCacheInvalidated)
}

func (w *AccessAuditWorker) handleAccessDenied(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccessDeniedPayload)
	if !ok {
		return fmt.Errorf("unexpected %s payload %T", event.Type, event.Payload)
	}

	w.logger.Info("AccessDenied",
		zap.String("event_id", event.ID),
		zap.String("path", payload.Path),
		zap.String("role", payload.Role),
		zap.String("route_class", payload.RouteClass),
		zap.String("request_id", payload.RequestID),
	)
	if w.repo == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	denial := &domain.AccessDenial{
		ID:         event.ID,
		Path:       payload.Path,
		Role:       payload.Role,
		RouteClass: payload.RouteClass,
		RequestID:  payload.RequestID,
		RemoteIP:   payload.RemoteIP,
		UserAgent:  payload.UserAgent,
		OccurredAt: event.Timestamp,
	}
	if err := w.repo.Create(ctx, denial); err != nil {
		return fmt.Errorf("persist access denial: %w", err)
	}
	return nil
}

func (w *AccessAuditWorker) handleSession(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SessionPayload)
	w.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("role", payload.Role),
		zap.String("reason", payload.Reason),
	)
	return nil
}

func (w *AccessAuditWorker) handleCacheInvalidated(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.CacheInvalidatedPayload)
	w.logger.Debug(string(event.Type),
		zap.String("endpoint", payload.Endpoint),
		zap.Strings("tags", payload.Tags),
		zap.Int("entries", payload.Entries),
	)
	return nil
}
