package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[string](4, time.Minute)

	c.Set("a", "one")

	got, ok := c.Get("a")
	if !ok || got != "one" {
		t.Fatalf("expected cached value, got %q ok=%v", got, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[string](4, -time.Second)

	c.Set("a", "one")

	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry must not be returned")
	}
	if c.Size() != 0 {
		t.Fatalf("expired read should remove the entry, size=%d", c.Size())
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("entry b should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("entry c should survive")
	}
}

func TestLRUEvictionRespectsRecency(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now the most recently used
	c.Set("c", 3)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently used entry should survive eviction")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry should have been evicted")
	}
}

func TestLRUDelete(t *testing.T) {
	c := NewLRU[string](4, time.Minute)

	c.Set("a", "one")
	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted entry must not be returned")
	}
}

func TestLRUSetReplaces(t *testing.T) {
	c := NewLRU[string](4, time.Minute)

	c.Set("a", "one")
	c.Set("a", "two")

	got, ok := c.Get("a")
	if !ok || got != "two" {
		t.Fatalf("expected latest value, got %q ok=%v", got, ok)
	}
	if c.Size() != 1 {
		t.Fatalf("replacing a key must not grow the cache, size=%d", c.Size())
	}
}

func TestLRUCleanExpired(t *testing.T) {
	c := NewLRU[int](8, time.Minute)

	c.Set("live", 1)
	c.mu.Lock()
	c.items["dead"] = c.order.PushFront(&entry[int]{key: "dead", expiresAt: time.Now().Add(-time.Second)})
	c.mu.Unlock()

	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("expected 1 expired entry removed, got %d", removed)
	}
	if _, ok := c.Get("live"); !ok {
		t.Fatal("live entry should survive cleanup")
	}
}
