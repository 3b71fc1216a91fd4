package cache

import (
	"context"
	"sync"
	"time"

	"photocheck-server-go/internal/domain/compliance"
)

// noopCache is the "none" driver: every lookup misses.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*compliance.Result, bool, error) {
	return nil, false, nil
}
func (noopCache) Set(context.Context, string, *compliance.Result) error { return nil }
func (noopCache) Stats(context.Context) (map[string]any, error) {
	return map[string]any{"driver": DriverNone}, nil
}
func (noopCache) Close(context.Context) error { return nil }

type memoryEntry struct {
	result    *compliance.Result
	expiresAt time.Time
}

type memoryCache struct {
	items    map[string]memoryEntry
	mutex    sync.RWMutex
	ttl      time.Duration
	gcFreq   time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemory builds an in-memory result cache with background expiry.
func NewMemory(cfg Config) Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	gc := time.Minute
	if cfg.Memory != nil && cfg.Memory.GCInterval > 0 {
		gc = cfg.Memory.GCInterval
	}
	c := &memoryCache{
		items:  make(map[string]memoryEntry),
		ttl:    ttl,
		gcFreq: gc,
		stop:   make(chan struct{}),
	}
	go c.gcLoop()
	return c
}

func (c *memoryCache) gcLoop() {
	ticker := time.NewTicker(c.gcFreq)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) evictExpired() {
	now := time.Now()
	c.mutex.Lock()
	for key, entry := range c.items {
		if now.After(entry.expiresAt) {
			delete(c.items, key)
		}
	}
	c.mutex.Unlock()
}

func (c *memoryCache) Get(_ context.Context, key string) (*compliance.Result, bool, error) {
	c.mutex.RLock()
	entry, ok := c.items[key]
	c.mutex.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.result, true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, result *compliance.Result) error {
	c.mutex.Lock()
	c.items[key] = memoryEntry{
		result:    result,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mutex.Unlock()
	return nil
}

func (c *memoryCache) Stats(_ context.Context) (map[string]any, error) {
	c.mutex.RLock()
	size := len(c.items)
	c.mutex.RUnlock()
	return map[string]any{
		"driver": DriverMemory,
		"size":   size,
		"ttl":    c.ttl.String(),
	}, nil
}

func (c *memoryCache) Close(context.Context) error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}
