// file: catalog/cache.go
package catalog

import (
	"context"
	"sync"
	"time"

	"hspace-portal/logger"
	"hspace-portal/metrics"
)

const (
	// DefaultWindow is how long a fetched list is reused.
	DefaultWindow = 900 * time.Second
	// lookupLimit sizes the forced refresh done by Get on a miss.
	lookupLimit = 100
)

// Cache holds the most recent catalog listing. One instance is shared by all
// requests. The lock only guards the snapshot and is never held during the
// outbound call, so concurrent misses may fetch twice; the last writer wins.
type Cache struct {
	fetcher Fetcher
	window  time.Duration
	metrics metrics.Publisher
	now     func() time.Time

	mu          sync.RWMutex
	refreshedAt time.Time
	loaded      bool
	events      []Event
	byID        map[int64]Event
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMetrics publishes fetch metrics.
func WithMetrics(p metrics.Publisher) Option {
	return func(c *Cache) { c.metrics = p }
}

// NewCache creates an empty cache. A non-positive window uses DefaultWindow.
func NewCache(fetcher Fetcher, window time.Duration, opts ...Option) *Cache {
	if window <= 0 {
		window = DefaultWindow
	}
	c := &Cache{
		fetcher: fetcher,
		window:  window,
		metrics: metrics.Noop{},
		now:     time.Now,
		byID:    make(map[int64]Event),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the cached list while it is fresh, otherwise refreshes with
// limit. limit is only a sizing hint for a refresh; a fresh list is returned
// as is whatever its size.
func (c *Cache) Fetch(ctx context.Context, limit int) []Event {
	c.mu.RLock()
	events, refreshedAt, loaded := c.events, c.refreshedAt, c.loaded
	c.mu.RUnlock()

	if loaded && c.now().Sub(refreshedAt) < c.window {
		logger.Debug.Printf("[catalog.Fetch] cache hit (%d events, age %v)", len(events), c.now().Sub(refreshedAt))
		return events
	}
	return c.Refresh(ctx, limit)
}

// Refresh fetches unconditionally and replaces the snapshot. A failed fetch is
// logged and stored as an empty list, which stays until the window expires.
func (c *Cache) Refresh(ctx context.Context, limit int) []Event {
	started := c.now()
	raw, err := c.fetcher.FetchEvents(ctx, limit, started)
	if err != nil {
		logger.Warn.Printf("[catalog.Refresh] catalog fetch failed: %v", err)
		c.metrics.PutMetric("CatalogFetchFailures", 1, metrics.UnitCount)
		raw = nil
	}

	events := make([]Event, 0, len(raw))
	byID := make(map[int64]Event, len(raw))
	for _, r := range raw {
		ev := FormatEvent(r)
		events = append(events, ev)
		if ev.ID != 0 {
			byID[ev.ID] = ev
		}
	}

	c.mu.Lock()
	c.events = events
	c.byID = byID
	c.refreshedAt = started
	c.loaded = true
	c.mu.Unlock()

	c.metrics.PutMetric("CatalogFetchLatencyMs", float64(c.now().Sub(started).Milliseconds()), metrics.UnitMilliseconds)
	c.metrics.PutMetric("CatalogEventsFetched", float64(len(events)), metrics.UnitCount)
	logger.Info.Printf("[catalog.Refresh] cached %d events (limit=%d)", len(events), limit)
	return events
}

// Get looks an event up by catalog id, forcing one refresh on a miss.
func (c *Cache) Get(ctx context.Context, id int64) (Event, bool) {
	if ev, ok := c.lookup(id); ok {
		return ev, true
	}
	logger.Debug.Printf("[catalog.Get] event %d not cached, refreshing", id)
	c.Refresh(ctx, lookupLimit)
	return c.lookup(id)
}

func (c *Cache) lookup(id int64) (Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ev, ok := c.byID[id]
	return ev, ok
}
