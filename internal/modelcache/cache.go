// Package modelcache holds loaded model handles keyed by version and evicts
// them after an idle TTL via a background janitor.
package modelcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/singleflight"
)

// Handle is an opaque loaded model resource. Close releases it.
type Handle interface {
	Close() error
}

type entry struct {
	handle   Handle
	lastUsed time.Time
}

// Cache is a concurrency-safe map of model key → loaded handle. Lookups
// refresh the entry's last-used timestamp; loads for the same key are
// coalesced so a burst of requests triggers one load.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	loads   singleflight.Group
	clock   clock.Clock
}

// NewCache creates an empty cache. A nil clock uses the wall clock.
func NewCache(clk clock.Clock) *Cache {
	if clk == nil {
		clk = clock.New()
	}
	return &Cache{entries: make(map[string]*entry), clock: clk}
}

// GetOrLoad returns the cached handle for key, loading it with load on a
// miss. Concurrent misses for the same key share one load. The lock is
// never held across the load call.
func (c *Cache) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (Handle, error)) (Handle, error) {
	if h, ok := c.get(key); ok {
		return h, nil
	}

	v, err, _ := c.loads.Do(key, func() (any, error) {
		// Another caller may have finished loading between our miss and
		// entering the flight.
		if h, ok := c.get(key); ok {
			return h, nil
		}
		h, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.put(key, h)
		return h, nil
	})
	if err != nil {
		return nil, fmt.Errorf("modelcache: load %q: %w", key, err)
	}
	return v.(Handle), nil
}

// get returns the handle for key, refreshing its timestamp. The timestamp
// is monotonically non-decreasing.
func (c *Cache) get(key string) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if now := c.clock.Now(); now.After(e.lastUsed) {
		e.lastUsed = now
	}
	return e.handle, true
}

func (c *Cache) put(key string, h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{handle: h, lastUsed: c.clock.Now()}
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// EvictIdle removes every handle idle for longer than ttl and releases its
// resource. Returns the evicted keys and any release errors. Map mutation
// happens under the lock; resource release happens after, so lookups never
// observe a torn entry.
func (c *Cache) EvictIdle(ttl time.Duration) ([]string, []error) {
	now := c.clock.Now()

	c.mu.Lock()
	var victims []string
	var handles []Handle
	for key, e := range c.entries {
		if now.Sub(e.lastUsed) > ttl {
			victims = append(victims, key)
			handles = append(handles, e.handle)
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	var errs []error
	for i, h := range handles {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("modelcache: release %q: %w", victims[i], err))
		}
	}
	return victims, errs
}

// Close releases every cached handle.
func (c *Cache) Close() error {
	c.mu.Lock()
	handles := make([]Handle, 0, len(c.entries))
	for key, e := range c.entries {
		handles = append(handles, e.handle)
		delete(c.entries, key)
	}
	c.mu.Unlock()

	var first error
	for _, h := range handles {
		if err := h.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
