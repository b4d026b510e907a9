// Package verify issues and confirms phone verification codes. Codes
// live in an expiring store and are consumed on first read, so each
// code grants exactly one confirmation attempt.
package verify

import (
	"sync"
	"time"
)

// CodeStore holds short-lived verification codes keyed by normalized
// phone number. GetAndConsume removes the entry it returns.
type CodeStore interface {
	Put(key, value string, ttl time.Duration)
	GetAndConsume(key string) (string, bool)
}

type storeItem struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded expiring map with an optional janitor
// goroutine for entries that expire unread.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]storeItem

	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]storeItem),
	}
}

// Put stores value under key. A second Put for the same key replaces
// the previous code and restarts its clock.
func (s *MemoryStore) Put(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = storeItem{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// GetAndConsume returns the live value for key and removes it. Expired
// or missing entries report false.
func (s *MemoryStore) GetAndConsume(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[key]
	if !exists {
		return "", false
	}
	delete(s.items, key)

	if time.Now().After(item.expiresAt) {
		return "", false
	}
	return item.value, true
}

// CleanExpired removes all expired entries and returns how many went.
func (s *MemoryStore) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, item := range s.items {
		if now.After(item.expiresAt) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

// Size returns the current number of stored codes.
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// StartCleanup begins periodic removal of expired entries. A second
// call while the janitor is running is a no-op; after Stop the janitor
// may be started again.
func (s *MemoryStore) StartCleanup(interval time.Duration) {
	if s.stopCleanup != nil {
		return
	}
	s.stopCleanup = make(chan struct{})
	s.cleanupDone = make(chan struct{})
	go s.cleanup(interval)
}

func (s *MemoryStore) cleanup(interval time.Duration) {
	defer close(s.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CleanExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

// Stop gracefully stops the cleanup routine. Stopping an idle store is
// a no-op.
func (s *MemoryStore) Stop() {
	if s.stopCleanup != nil {
		close(s.stopCleanup)
		<-s.cleanupDone
		s.stopCleanup = nil
		s.cleanupDone = nil
	}
}
