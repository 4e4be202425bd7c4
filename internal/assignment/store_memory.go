package assignment

import (
	"context"
	"sort"
	"sync"

	id "ctfbot/pkg/domain"
	"ctfbot/pkg/platform/sentinel"
)

// MemoryStore keeps claims in memory for development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	claims map[claimKey]*Assignment
}

type claimKey struct {
	team      id.TeamID
	challenge id.ChallengeID
	member    string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{claims: make(map[claimKey]*Assignment)}
}

func (s *MemoryStore) Create(ctx context.Context, a *Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := claimKey{team: a.TeamID, challenge: a.ChallengeID, member: a.Member}
	if _, exists := s.claims[key]; exists {
		return sentinel.ErrConflict
	}
	cp := *a
	s.claims[key] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := claimKey{team: teamID, challenge: challengeID, member: member}
	if _, exists := s.claims[key]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.claims, key)
	return nil
}

func (s *MemoryStore) ListByTeam(ctx context.Context, teamID id.TeamID) ([]*Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Assignment
	for _, a := range s.claims {
		if a.TeamID == teamID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortClaims(out)
	return out, nil
}

func (s *MemoryStore) ListByChallenge(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID) ([]*Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Assignment
	for _, a := range s.claims {
		if a.TeamID == teamID && a.ChallengeID == challengeID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortClaims(out)
	return out, nil
}

func sortClaims(out []*Assignment) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ClaimedAt.Equal(out[j].ClaimedAt) {
			return out[i].ClaimedAt.Before(out[j].ClaimedAt)
		}
		return out[i].Member < out[j].Member
	})
}
