// Package ratelimit caps how fast a single sender can hit the server.
// Counting is a fixed one-minute window per key; a janitor goroutine
// sweeps senders that have gone quiet so the map cannot grow without
// bound.
package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

// Limiter tracks request counts per key. Keys are whatever identifies a
// sender to the caller: the webhook uses the normalized phone number,
// the verification endpoints use the client IP.
type Limiter struct {
	mu           sync.Mutex
	senders      map[string]*senderInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	hits         int64

	perMinute       int
	cleanupInterval time.Duration
}

type senderInfo struct {
	lastRequest time.Time
	requests    int
}

// Config holds rate limiter configuration.
type Config struct {
	PerMinute       int
	CleanupInterval time.Duration
}

// DefaultConfig returns the defaults used for unset fields.
func DefaultConfig() Config {
	return Config{
		PerMinute:       10,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewLimiter creates a rate limiter and starts its cleanup goroutine.
func NewLimiter(config Config) *Limiter {
	if config.PerMinute <= 0 {
		config.PerMinute = DefaultConfig().PerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	rl := &Limiter{
		senders:         make(map[string]*senderInfo),
		stopCleanup:     make(chan struct{}),
		perMinute:       config.PerMinute,
		cleanupInterval: config.CleanupInterval,
	}
	go rl.startCleanup()
	return rl
}

// Allow reports whether one more request from key fits its window.
func (rl *Limiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	sender, exists := rl.senders[key]

	if !exists {
		rl.senders[key] = &senderInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset the window after a minute of quiet
	if now.Sub(sender.lastRequest) > time.Minute {
		sender.requests = 1
		sender.lastRequest = now
		return true
	}

	sender.requests++
	sender.lastRequest = now

	if sender.requests > rl.perMinute {
		atomic.AddInt64(&rl.hits, 1)
		return false
	}
	return true
}

// Hits returns how many requests have been rejected since startup.
func (rl *Limiter) Hits() int64 {
	return atomic.LoadInt64(&rl.hits)
}

// ActiveSenders returns the number of currently tracked keys.
func (rl *Limiter) ActiveSenders() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.senders)
}

// startCleanup runs periodic cleanup to remove stale sender entries
func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes sender entries older than 10 minutes
func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for key, sender := range rl.senders {
		if sender.lastRequest.Before(cutoff) {
			delete(rl.senders, key)
		}
	}
}

// Stop gracefully shuts down the cleanup goroutine.
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}
