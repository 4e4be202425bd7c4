package challenge

import (
	"context"
	"sort"
	"sync"

	id "ctfbot/pkg/domain"
	"ctfbot/pkg/platform/sentinel"
)

// MemoryStore keeps challenges in memory for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.ChallengeID]*Challenge
	byName map[nameKey]struct{}
}

type nameKey struct{ name, category string }

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[id.ChallengeID]*Challenge),
		byName: make(map[nameKey]struct{}),
	}
}

func (s *MemoryStore) Create(ctx context.Context, c *Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := nameKey{name: c.Name, category: c.Category}
	if _, exists := s.byName[key]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byID[c.ID]; exists {
		return sentinel.ErrConflict
	}

	cp := *c
	s.byID[c.ID] = &cp
	s.byName[key] = struct{}{}
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, challengeID id.ChallengeID) (*Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[challengeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Challenge, 0, len(s.byID))
	for _, c := range s.byID {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
