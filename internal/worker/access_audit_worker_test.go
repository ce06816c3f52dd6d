package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
	"github.com/spec-kit/retailer-dashboard/internal/events"
)

type fakeAuditRepo struct {
	created []domain.AccessDenial
	err     error
}

func (f *fakeAuditRepo) Create(_ context.Context, d *domain.AccessDenial) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *d)
	return nil
}

func TestAccessDeniedIsPersisted(t *testing.T) {
	repo := &fakeAuditRepo{}
	dispatcher := events.NewInMemoryDispatcher()
	NewAccessAuditWorker(repo, nil).Start(dispatcher)

	event := events.New(events.EventAccessDenied, events.AccessDeniedPayload{
		Path:       "/products-export",
		Role:       "retailer",
		RouteClass: "unknown_protected",
		RequestID:  "req-1",
		RemoteIP:   "10.0.0.1",
		UserAgent:  "test",
	})
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	require.Len(t, repo.created, 1)
	got := repo.created[0]
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, "/products-export", got.Path)
	assert.Equal(t, "unknown_protected", got.RouteClass)
	assert.Equal(t, event.Timestamp, got.OccurredAt)
}

func TestAccessDeniedWithoutRepositoryOnlyLogs(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewAccessAuditWorker(nil, nil).Start(dispatcher)

	err := dispatcher.Publish(context.Background(), events.New(events.EventAccessDenied, events.AccessDeniedPayload{Path: "/x"}))
	assert.NoError(t, err)
}

func TestAccessDeniedRepositoryFailureSurfaces(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewAccessAuditWorker(&fakeAuditRepo{err: errors.New("db down")}, nil).Start(dispatcher)

	err := dispatcher.Publish(context.Background(), events.New(events.EventAccessDenied, events.AccessDeniedPayload{Path: "/x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestUnexpectedPayload(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewAccessAuditWorker(&fakeAuditRepo{}, nil).Start(dispatcher)

	err := dispatcher.Publish(context.Background(), events.New(events.EventAccessDenied, "not a payload"))
	assert.Error(t, err)
}

func TestSessionEventsAreAccepted(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	NewAccessAuditWorker(nil, nil).Start(dispatcher)

	assert.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventSessionCreated, events.SessionPayload{Reason: "login"})))
	assert.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventSessionCleared, events.SessionPayload{Reason: "logout"})))
}

func TestCacheInvalidationIsLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAccessAuditWorker(nil, zap.New(core)).Start(dispatcher)

	require.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventCacheInvalidated, events.CacheInvalidatedPayload{
		Endpoint: "deleteProduct",
		Tags:     []string{"Product:7", "Product:LIST"},
		Entries:  2,
	})))

	entries := logs.FilterMessage(string(events.EventCacheInvalidated)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "deleteProduct", entries[0].ContextMap()["endpoint"])
	assert.EqualValues(t, 2, entries[0].ContextMap()["entries"])
}
