package team

import (
	"context"
	"sort"
	"strings"
	"sync"

	id "ctfbot/pkg/domain"
	"ctfbot/pkg/platform/sentinel"
)

// MemoryStore keeps teams in memory for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.TeamID]*Team
	byName map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[id.TeamID]*Team),
		byName: make(map[string]struct{}),
	}
}

func (s *MemoryStore) Create(ctx context.Context, t *Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nameKey := strings.ToLower(t.Name)
	if _, exists := s.byName[nameKey]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byID[t.ID]; exists {
		return sentinel.ErrConflict
	}

	cp := *t
	s.byID[t.ID] = &cp
	s.byName[nameKey] = struct{}{}
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, teamID id.TeamID) (*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[teamID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Team, 0, len(s.byID))
	for _, t := range s.byID {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
