// Package memory is an in-process row appender for tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"smsledger/internal/export"
)

type Store struct {
	mu    sync.Mutex
	items []export.Entry
}

func New() *Store {
	return &Store{}
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e export.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Entries returns a copy of everything appended so far.
func (s *Store) Entries() []export.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]export.Entry(nil), s.items...)
}
