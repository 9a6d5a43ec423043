package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// MemoryCache is an in-memory Cache with periodic expiry sweeps.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry

	sweepInterval time.Duration
	stopSweep     chan struct{}
	stopOnce      sync.Once
}

// NewMemoryCache creates an in-memory cache and starts its sweep goroutine.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		entries:       make(map[string]*memoryEntry),
		sweepInterval: time.Minute,
		stopSweep:     make(chan struct{}),
	}

	go c.sweep()

	return c
}

// Get retrieves a value by key.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || entry.expired() {
		return nil, ErrCacheMiss
	}

	// Copy so callers can't mutate the cached bytes.
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a value with the given TTL.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	c.entries[key] = &memoryEntry{
		value:     stored,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a value by key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*memoryEntry)
	return nil
}

// Close stops the sweep goroutine.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopSweep) })
	return nil
}

func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for key, entry := range c.entries {
				if entry.expired() {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopSweep:
			return
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
