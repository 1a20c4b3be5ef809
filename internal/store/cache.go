package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/menu-cache/internal/model"
)

// DefaultTTL is how long a cached menu stays fresh.
const DefaultTTL = 24 * time.Hour

// LookupState classifies a cache read.
type LookupState int

const (
	Miss LookupState = iota
	Stale
	Fresh
)

func (s LookupState) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "miss"
	}
}

// Cache applies the staleness policy on top of a Store. Store failures never
// escape a read; they are logged and reported as a miss.
type Cache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) { c.logger = l }
}

// NewCache wraps s. A ttl <= 0 selects DefaultTTL.
func NewCache(s Store, ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{store: s, ttl: ttl, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the underlying store.
func (c *Cache) Store() Store { return c.store }

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Now returns the cache's current time.
func (c *Cache) Now() time.Time { return c.now() }

// Lookup reads the record for id. A stale record is returned with state
// Stale and is left in place.
func (c *Cache) Lookup(ctx context.Context, id string) (*model.CachedMenuRecord, LookupState) {
	rec, err := c.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("Cache read failed", "restaurant_id", id, "error", err)
		}
		return nil, Miss
	}
	if rec.IsStale(c.now(), c.ttl) {
		return rec, Stale
	}
	return rec, Fresh
}

// Save writes rec stamped with the current cached-at time. rec itself is
// stamped only once the write succeeds. Any failure is reported as
// ErrStoreUnavailable.
func (c *Cache) Save(ctx context.Context, rec *model.CachedMenuRecord) error {
	now := c.now().UTC()
	stamped := *rec
	stamped.CachedAt = now
	if stamped.LastUpdated.IsZero() {
		stamped.LastUpdated = now
	}
	if err := c.store.Put(ctx, &stamped); err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	rec.CachedAt = stamped.CachedAt
	rec.LastUpdated = stamped.LastUpdated
	return nil
}
