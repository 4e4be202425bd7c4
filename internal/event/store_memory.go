package event

import (
	"context"
	"sort"
	"sync"

	id "ctfbot/pkg/domain"
	"ctfbot/pkg/platform/sentinel"
)

// MemoryStore keeps events in memory for development and tests.
type MemoryStore struct {
	mu   sync.Mutex
	byID map[id.EventID]*Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[id.EventID]*Event)}
}

func (s *MemoryStore) Create(ctx context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[e.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *e
	s.byID[e.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, eventID id.EventID) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Event, 0, len(s.byID))
	for _, e := range s.byID {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (s *MemoryStore) Execute(ctx context.Context, eventID id.EventID, mutate func(e *Event) error) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	// Mutate a copy so a failing callback leaves the stored event untouched.
	cp := *e
	if err := mutate(&cp); err != nil {
		return nil, err
	}
	stored := cp
	s.byID[eventID] = &stored
	return &cp, nil
}
