package audit

import (
	"context"
	"slices"
	"sync"
)

// InMemoryStore keeps events in append order, indexed by subject.
type InMemoryStore struct {
	mu        sync.RWMutex
	all       []Event
	bySubject map[string][]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{bySubject: make(map[string][]int)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = nil
	s.bySubject = make(map[string][]int)
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySubject[event.Subject] = append(s.bySubject[event.Subject], len(s.all))
	s.all = append(s.all, event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.bySubject[subject]
	out := make([]Event, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.all[i])
	}
	return out, nil
}

// ListRecent returns up to limit events, newest first. limit <= 0 returns all.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && limit < len(s.all) {
		start = len(s.all) - limit
	}
	out := slices.Clone(s.all[start:])
	slices.Reverse(out)
	return out, nil
}
