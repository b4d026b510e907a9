package ratelimit

import (
	"testing"
	"time"
)

func newTestLimiter(perMinute int) *Limiter {
	// A long cleanup interval keeps the janitor quiet during tests.
	return NewLimiter(Config{PerMinute: perMinute, CleanupInterval: time.Hour})
}

func TestAllowUnderLimit(t *testing.T) {
	rl := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("+15550001111") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Hits() != 0 {
		t.Errorf("Hits() = %d, want 0", rl.Hits())
	}
}

func TestRejectOverLimit(t *testing.T) {
	rl := newTestLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.Allow("+15550001111")
	}
	if rl.Allow("+15550001111") {
		t.Fatal("fourth request should be rejected")
	}
	if rl.Hits() != 1 {
		t.Errorf("Hits() = %d, want 1", rl.Hits())
	}
}

func TestKeysAreIndependent(t *testing.T) {
	rl := newTestLimiter(1)
	defer rl.Stop()

	if !rl.Allow("+15550001111") {
		t.Fatal("first sender should be allowed")
	}
	if !rl.Allow("+15550002222") {
		t.Fatal("second sender should be allowed")
	}
	if rl.Allow("+15550001111") {
		t.Fatal("first sender should be over its own limit")
	}
	if rl.ActiveSenders() != 2 {
		t.Errorf("ActiveSenders() = %d, want 2", rl.ActiveSenders())
	}
}

func TestWindowResetsAfterQuiet(t *testing.T) {
	rl := newTestLimiter(1)
	defer rl.Stop()

	rl.Allow("+15550001111")
	if rl.Allow("+15550001111") {
		t.Fatal("second immediate request should be rejected")
	}

	// Backdate the sender past the window instead of sleeping.
	rl.mu.Lock()
	rl.senders["+15550001111"].lastRequest = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	if !rl.Allow("+15550001111") {
		t.Fatal("request after a quiet minute should be allowed")
	}
}

func TestCleanupRemovesStaleSenders(t *testing.T) {
	rl := newTestLimiter(10)
	defer rl.Stop()

	rl.Allow("+15550001111")
	rl.Allow("+15550002222")

	rl.mu.Lock()
	rl.senders["+15550001111"].lastRequest = time.Now().Add(-11 * time.Minute)
	rl.mu.Unlock()

	rl.cleanupStaleEntries()

	if rl.ActiveSenders() != 1 {
		t.Errorf("ActiveSenders() = %d, want 1 after cleanup", rl.ActiveSenders())
	}
}

func TestConfigDefaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	if rl.perMinute != DefaultConfig().PerMinute {
		t.Errorf("perMinute = %d, want default %d", rl.perMinute, DefaultConfig().PerMinute)
	}
	if rl.cleanupInterval != DefaultConfig().CleanupInterval {
		t.Errorf("cleanupInterval = %v, want default %v", rl.cleanupInterval, DefaultConfig().CleanupInterval)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	rl := newTestLimiter(1)
	rl.Stop()
	rl.Stop()
}
