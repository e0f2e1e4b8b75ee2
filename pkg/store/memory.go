package store

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps entries in process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, e *Entry) error {
	ensureID(e)
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	cp.Totals = slices.Clone(e.Totals)
	s.entries = append(s.entries, cp)
	return nil
}

// History implements Store.
func (s *MemoryStore) History(_ context.Context, pipeline, provider string, limit int) ([]Entry, error) {
	limit = normalizeLimit(limit)
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Entry{}
	for _, e := range s.entries {
		if e.Pipeline == pipeline && e.Provider == provider {
			out = append(out, e)
		}
	}
	// Newest first; equal times keep the later save first.
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b Entry) int {
		return b.FetchedAt.Compare(a.FetchedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
