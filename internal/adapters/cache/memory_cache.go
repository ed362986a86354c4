package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikey/llm-smart-forward/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a cache entry is not found
	ErrNotFound = errors.New("cache entry not found")
	// ErrExpired is returned when a cache entry has expired
	ErrExpired = errors.New("cache entry expired")
)

// MemoryCache is an in-memory implementation of the CacheRepository
// interface. It is bounded: when maxEntries is reached, the least
// frequently used entry is evicted (oldest LastSeen breaks ties). Expired
// entries are dropped on read and by a background cleanup ticker.
type MemoryCache struct {
	entries     map[string]*core.CacheEntry
	mu          sync.RWMutex
	logger      *zap.Logger
	maxEntries  int
	cleanupFreq time.Duration
	stopCh      chan struct{}
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger, maxEntries int, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]*core.CacheEntry),
		logger:      logger,
		maxEntries:  maxEntries,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	go cache.startCleanupTask()

	return cache
}

// Get retrieves a cached entry for a prompt key. A hit bumps the entry's
// use frequency for LFU eviction.
func (c *MemoryCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	if time.Now().After(entry.ExpiresAt) {
		delete(c.entries, key)
		return nil, ErrExpired
	}

	entry.Frequency++
	entry.LastSeen = time.Now()

	copied := *entry
	return &copied, nil
}

// Set stores a cache entry, evicting the least frequently used entry first
// when the cache is full.
func (c *MemoryCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[entry.Key]; !exists && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLeastUsed()
	}

	copied := *entry
	if copied.Frequency == 0 {
		copied.Frequency = 1
	}
	c.entries[entry.Key] = &copied
	return nil
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}

// Len returns the number of entries currently held.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLeastUsed drops the entry with the lowest frequency, preferring the
// least recently seen on ties. Caller holds the write lock.
func (c *MemoryCache) evictLeastUsed() {
	var victim string
	var victimEntry *core.CacheEntry

	for key, entry := range c.entries {
		if victimEntry == nil ||
			entry.Frequency < victimEntry.Frequency ||
			(entry.Frequency == victimEntry.Frequency && entry.LastSeen.Before(victimEntry.LastSeen)) {
			victim = key
			victimEntry = entry
		}
	}

	if victimEntry != nil {
		delete(c.entries, victim)
		c.logger.Debug("Evicted least used cache entry",
			zap.Int("frequency", victimEntry.Frequency))
	}
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	close(c.stopCh)
}
