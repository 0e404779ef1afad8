package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/listingmatch/backend/internal/domain"
)

// cacheItem represents a single resolution in the cache with expiration
type cacheItem struct {
	value      domain.Resolution
	expiration time.Time
}

// MemoryCache is a thread-safe in-memory resolution cache with TTL support
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache creates a new in-memory cache. A positive cleanupInterval
// starts a janitor goroutine that evicts expired entries until Close is called.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
		now:  time.Now,
		stop: make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go cache.cleanupExpired(cleanupInterval)
	}

	return cache
}

// Get retrieves a resolution from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (domain.Resolution, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists || c.now().After(item.expiration) {
		return domain.Resolution{}, domain.ErrCacheMiss
	}

	return cloneResolution(item.value), nil
}

// Set stores a resolution in the cache with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, value domain.Resolution, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		value:      cloneResolution(value),
		expiration: c.now().Add(ttl),
	}
	return nil
}

// Delete removes a resolution from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Size returns the current number of items in the cache, expired ones included
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}

// Close stops the janitor goroutine. It is safe to call more than once.
func (c *MemoryCache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *MemoryCache) evictExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for key, item := range c.data {
		if now.After(item.expiration) {
			delete(c.data, key)
		}
	}
}

// cloneResolution copies the slices so callers never share backing arrays with the cache.
func cloneResolution(r domain.Resolution) domain.Resolution {
	r.Candidates = slices.Clone(r.Candidates)
	r.Tokens = slices.Clone(r.Tokens)
	r.EliminationKeywords = slices.Clone(r.EliminationKeywords)
	return r
}
