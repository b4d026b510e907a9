package verify

import (
	"testing"
	"time"
)

func TestMemoryStorePutAndConsume(t *testing.T) {
	s := NewMemoryStore()

	s.Put("+15550001111", "123456", time.Minute)

	got, ok := s.GetAndConsume("+15550001111")
	if !ok || got != "123456" {
		t.Fatalf("expected stored code, got %q ok=%v", got, ok)
	}

	// Consumed: a second read finds nothing.
	if _, ok := s.GetAndConsume("+15550001111"); ok {
		t.Fatal("code should be consumed after first read")
	}
}

func TestMemoryStoreMissingKey(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.GetAndConsume("+15550002222"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()

	s.Put("+15550003333", "123456", -time.Second)

	if _, ok := s.GetAndConsume("+15550003333"); ok {
		t.Fatal("expired code must not be returned")
	}
	if s.Size() != 0 {
		t.Fatalf("expired read should remove the entry, size=%d", s.Size())
	}
}

func TestMemoryStoreReplace(t *testing.T) {
	s := NewMemoryStore()

	s.Put("+15550004444", "111111", time.Minute)
	s.Put("+15550004444", "222222", time.Minute)

	got, ok := s.GetAndConsume("+15550004444")
	if !ok || got != "222222" {
		t.Fatalf("expected latest code, got %q ok=%v", got, ok)
	}
}

func TestMemoryStoreCleanExpired(t *testing.T) {
	s := NewMemoryStore()

	s.Put("a", "1", -time.Second)
	s.Put("b", "2", -time.Second)
	s.Put("c", "3", time.Minute)

	if removed := s.CleanExpired(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if s.Size() != 1 {
		t.Fatalf("expected 1 remaining, got %d", s.Size())
	}
	if got, ok := s.GetAndConsume("c"); !ok || got != "3" {
		t.Fatalf("live entry must survive cleanup, got %q ok=%v", got, ok)
	}
}

func TestMemoryStoreCleanupLifecycle(t *testing.T) {
	s := NewMemoryStore()

	s.StartCleanup(time.Minute)
	// A second start while running must not orphan the first janitor.
	s.StartCleanup(time.Minute)
	s.Stop()
	// Stop on an idle store is a no-op, and the janitor can restart.
	s.Stop()
	s.StartCleanup(time.Minute)
	s.Stop()
}
