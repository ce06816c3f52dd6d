// Package cache is the tag-indexed response registry sitting between page handlers
// and the upstream API. Reads declare the tags they provide, mutations the tags they
// invalidate, and an invalidated entry is never served again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spec-kit/retailer-dashboard/internal/events"
	"github.com/spec-kit/retailer-dashboard/internal/observability"
)

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = 60 * time.Second

// AnonymousScope holds reads made without a token.
const AnonymousScope = "anon"

// Cache coordinates a Store with request deduplication.
type Cache struct {
	store      Store
	ttl        time.Duration
	group      singleflight.Group
	logger     *zap.Logger
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
}

// Option customizes a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithMetrics records hit and miss counters.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Cache) { c.metrics = metrics }
}

// WithDispatcher publishes an event for every invalidation.
func WithDispatcher(d events.Dispatcher) Option {
	return func(c *Cache) { c.dispatcher = d }
}

// New creates a Cache over store.
func New(store Store, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		store:      store,
		ttl:        ttl,
		logger:     zap.NewNop(),
		dispatcher: events.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Scope derives the cache partition of a bearer token so users never share entries.
func Scope(token string) string {
	if token == "" {
		return AnonymousScope
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}

// Query describes a cacheable read.
type Query[T any] struct {
	Endpoint string
	Args     string
	Fetch    func(ctx context.Context) (T, error)
	Provides func(T) []Tag
}

// Fetch serves q from the cache, or runs it once for all concurrent callers of the
// same key and stores the result under the tags it provides. Errors are never cached.
//
// A read that an invalidation of its scope overtakes is returned to its callers
// but not stored, and callers arriving after the invalidation start a new read.
func Fetch[T any](ctx context.Context, c *Cache, scope string, q Query[T]) (T, error) {
	var zero T
	key := Key{Scope: scope, Endpoint: q.Endpoint, Args: q.Args}

	if entry, ok := c.lookup(ctx, key); ok {
		var out T
		if err := json.Unmarshal(entry.Data, &out); err == nil {
			c.metrics.RecordCacheLookup(q.Endpoint, true)
			return out, nil
		}
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key.String()))
	}
	c.metrics.RecordCacheLookup(q.Endpoint, false)

	gen, err := c.store.Generation(ctx, scope)
	if err != nil {
		c.logger.Warn("cache generation read failed, serving uncached", zap.String("endpoint", q.Endpoint), zap.Error(err))
		return q.Fetch(ctx)
	}

	flight := fmt.Sprintf("%s@%d", key.String(), gen)
	raw, err, shared := c.group.Do(flight, func() (interface{}, error) {
		value, err := q.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s response: %w", q.Endpoint, err)
		}

		var tags []Tag
		if q.Provides != nil {
			tags = q.Provides(value)
		}
		entry := Entry{Data: data, Tags: tags, StoredAt: time.Now().UTC()}
		stored, err := c.store.PutIfCurrent(ctx, key, entry, c.ttl, gen)
		switch {
		case err != nil:
			c.logger.Warn("cache put failed", zap.String("endpoint", q.Endpoint), zap.Error(err))
		case !stored:
			c.logger.Debug("dropping read overtaken by invalidation", zap.String("endpoint", q.Endpoint))
		}
		return data, nil
	})
	if err != nil {
		return zero, err
	}
	if shared {
		c.logger.Debug("deduplicated upstream read", zap.String("endpoint", q.Endpoint))
	}

	var out T
	if err := json.Unmarshal(raw.([]byte), &out); err != nil {
		return zero, fmt.Errorf("decode %s response: %w", q.Endpoint, err)
	}
	return out, nil
}

// Invalidate marks every entry of scope that provides one of tags as stale.
// endpoint names the mutation for logs and events.
func (c *Cache) Invalidate(ctx context.Context, scope, endpoint string, tags ...Tag) error {
	if len(tags) == 0 {
		return nil
	}
	n, err := c.store.Invalidate(ctx, scope, tags)
	if err != nil {
		return fmt.Errorf("invalidate %v: %w", tagStrings(tags), err)
	}

	c.logger.Debug("cache invalidated",
		zap.String("endpoint", endpoint),
		zap.Strings("tags", tagStrings(tags)),
		zap.Int("entries", n),
	)
	payload := events.CacheInvalidatedPayload{Endpoint: endpoint, Tags: tagStrings(tags), Entries: n}
	if err := c.dispatcher.Publish(ctx, events.New(events.EventCacheInvalidated, payload)); err != nil {
		c.logger.Warn("cache invalidation handlers failed", zap.Error(err))
	}
	return nil
}

func (c *Cache) lookup(ctx context.Context, key Key) (Entry, bool) {
	entry, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key.String()), zap.Error(err))
		return Entry{}, false
	}
	if !ok || entry.Stale {
		return Entry{}, false
	}
	return entry, true
}
