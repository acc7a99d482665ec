package repository

import (
	"context"
	"sync"

	"github.com/okian/touchline/pkg/metrics"
)

// MemoryStore keeps matches in process memory in insertion order.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	order      []string
	maxEntries int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore{
		entries:    make(map[string]Entry),
		maxEntries: o.maxEntries,
	}
}

func (s *MemoryStore) Put(_ context.Context, e Entry) error {
	if err := e.validate(); err != nil {
		metrics.RecordStoreError("put")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.ID]; exists {
		s.removeFromOrder(e.ID)
	}
	for s.maxEntries > 0 && len(s.order) >= s.maxEntries {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
	s.entries[e.ID] = e
	s.order = append(s.order, e.ID)
	metrics.UpdateMatchesStored(len(s.entries))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	s.removeFromOrder(id)
	metrics.UpdateMatchesStored(len(s.entries))
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *MemoryStore) Close() error { return nil }

// removeFromOrder drops id from the insertion order. Callers hold mu.
func (s *MemoryStore) removeFromOrder(id string) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
