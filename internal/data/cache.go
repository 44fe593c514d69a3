package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"option-live/internal/model"
)

// CacheEntry represents a cached calculation result
type CacheEntry struct {
	Result    *model.PricingResult
	ExpiresAt time.Time
}

// ResponseCache provides in-memory caching for calculation results.
//
// Retyping a previously priced set of inputs is served without a round trip.
// Configuration forces it off when API_ENV=production.
//
// A nil *ResponseCache is valid and caches nothing.
type ResponseCache struct {
	mu    sync.RWMutex
	store map[string]*CacheEntry
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewResponseCache creates a cache whose entries live for ttl (default 1h)
// and starts its cleanup goroutine. Call Close to stop it.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	c := &ResponseCache{
		store: make(map[string]*CacheEntry),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go c.cleanup(5 * time.Minute)
	return c
}

// Get retrieves a cached result if available and not expired
func (c *ResponseCache) Get(key string) (*model.PricingResult, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists {
		return nil, false
	}

	if c.now().After(entry.ExpiresAt) {
		return nil, false
	}

	return entry.Result, true
}

// Set stores a result in the cache
func (c *ResponseCache) Set(key string, result *model.PricingResult) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &CacheEntry{
		Result:    result,
		ExpiresAt: c.now().Add(c.ttl),
	}
}

// size returns the number of stored entries, expired or not.
func (c *ResponseCache) size() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// reset removes all entries from the cache
func (c *ResponseCache) reset() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]*CacheEntry)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *ResponseCache) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.stop) })
}

// cleanup periodically removes expired entries
func (c *ResponseCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
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

func (c *ResponseCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, key)
		}
	}
}

// CacheKey creates a cache key from a request snapshot
func CacheKey(in model.Inputs) string {
	keyStr := fmt.Sprintf("%g:%g:%g:%g:%g",
		in.StockPrice,
		in.StrikePrice,
		in.InterestRate,
		in.Maturity,
		in.Volatility,
	)

	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}
