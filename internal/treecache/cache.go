// Package treecache memoizes resolved component forests.
package treecache

import (
	"context"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladimir-polyakov/esencia/internal/component"
	"github.com/vladimir-polyakov/esencia/internal/logging"
	"github.com/vladimir-polyakov/esencia/internal/metrics"
)

const DefaultExpiration = 10 * time.Minute
const DefaultCleanupInterval = 30 * time.Minute

// Resolver is a registry whose state can be identified. *component.Registry
// satisfies it.
type Resolver interface {
	// ResolveVersioned resolves names and reports the generation the forest
	// was computed from.
	ResolveVersioned(names ...string) (component.Forest, uint64, error)
	ID() string
	Generation() uint64
}

// Span event names recorded on the span carried by the Resolve context.
const (
	EventHit   = "treecache.hit"
	EventMiss  = "treecache.miss"
	EventStore = "treecache.store"
)

// Cache stores forests keyed by registry identity, generation and request.
// A nil *Cache resolves without caching.
type Cache struct {
	cache   *gocache.Cache
	ttl     time.Duration
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// Option customizes a Cache.
type Option func(*Cache)

// WithLogger logs hits and misses at debug level.
func WithLogger(l *logging.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// WithMetrics counts hits and misses.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New initializes the cache. Non-positive durations fall back to defaults.
func New(ttl, cleanupInterval time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	c := &Cache{
		cache: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Key identifies a request against one registry state. Name order is kept
// because it decides root and child order.
func Key(registryID string, generation uint64, names []string) string {
	var b strings.Builder
	b.WriteString(registryID)
	b.WriteByte('@')
	b.WriteString(strconv.FormatUint(generation, 10))
	for _, name := range names {
		b.WriteByte('\x1f')
		b.WriteString(name)
	}
	return b.String()
}

// Resolve returns a cached forest for names or resolves and stores it. Every
// caller gets its own copy. Failures are not cached. Hits, misses and stores
// are added as events to the span in ctx, if any.
func (c *Cache) Resolve(ctx context.Context, reg Resolver, names []string) (component.Forest, error) {
	if c == nil {
		forest, _, err := reg.ResolveVersioned(names...)
		return forest, err
	}
	span := trace.SpanFromContext(ctx)
	key := Key(reg.ID(), reg.Generation(), names)
	if value, found := c.cache.Get(key); found {
		if forest, ok := value.(component.Forest); ok {
			c.logger.Debug(logging.CatCache, "cache hit", "key", key)
			c.metrics.RecordCacheHit()
			span.AddEvent(EventHit, trace.WithAttributes(attribute.String("treecache.key", key)))
			return forest.Clone(), nil
		}
		c.logger.Error(logging.CatCache, "wrong type assertion when getting value", "key", key)
	}
	c.metrics.RecordCacheMiss()
	span.AddEvent(EventMiss, trace.WithAttributes(attribute.String("treecache.key", key)))

	// A register may land between the lookup and the resolve; store under
	// the generation the forest was actually computed from.
	forest, generation, err := reg.ResolveVersioned(names...)
	if err != nil {
		return nil, err
	}
	storeKey := Key(reg.ID(), generation, names)
	c.cache.Set(storeKey, forest.Clone(), c.ttl)
	c.logger.Debug(logging.CatCache, "cache store", "key", storeKey, "roots", len(forest))
	span.AddEvent(EventStore, trace.WithAttributes(attribute.String("treecache.key", storeKey)))
	return forest, nil
}

// Len reports the number of cached entries, expired ones included until the
// next cleanup.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.ItemCount()
}

// Flush drops every entry.
func (c *Cache) Flush() {
	if c == nil {
		return
	}
	c.cache.Flush()
}
