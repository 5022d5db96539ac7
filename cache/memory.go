package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mbolis/quick-forms/analytics"
)

type item struct {
	report     analytics.Report
	expiration int64
}

// MemoryCache is an in-process cache with per-item expiration.
type MemoryCache struct {
	items map[string]item
	ttl   time.Duration
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemory creates an in-memory cache. Expired items are swept every
// minute until ctx is done.
func NewMemory(ctx context.Context, ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		items: make(map[string]item),
		ttl:   ttl,
		now:   time.Now,
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.DeleteExpired()
			}
		}
	}()

	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) (*analytics.Report, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, found := c.items[key]
	if !found || c.now().UnixNano() > it.expiration {
		return nil, false, nil
	}

	report := it.report
	return &report, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, report *analytics.Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		report:     *report,
		expiration: c.now().Add(c.ttl).UnixNano(),
	}
	return nil
}

// DeleteExpired removes all expired items from the cache.
func (c *MemoryCache) DeleteExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for k, v := range c.items {
		if now > v.expiration {
			delete(c.items, k)
		}
	}
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
