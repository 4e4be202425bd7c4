package scoring

import (
	"context"
	"sync"
	"time"

	id "ctfbot/pkg/domain"
)

// MemoryScoreStore keeps solves and deltas in memory. One store-wide mutex
// makes ApplySolve atomic; the engine's per-pair locks keep contention off
// unrelated pairs before they reach this point.
type MemoryScoreStore struct {
	mu         sync.RWMutex
	solves     map[pairKey]*SolveEvent
	solveCount map[id.ChallengeID]int
	deltas     []ScoreDelta
}

type pairKey struct {
	team      id.TeamID
	challenge id.ChallengeID
}

func NewMemoryScoreStore() *MemoryScoreStore {
	return &MemoryScoreStore{
		solves:     make(map[pairKey]*SolveEvent),
		solveCount: make(map[id.ChallengeID]int),
	}
}

func (s *MemoryScoreStore) ApplySolve(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, at time.Time, award func(solveCount int) int) (*ScoreDelta, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{team: teamID, challenge: challengeID}
	if _, exists := s.solves[key]; exists {
		return nil, false, nil
	}

	s.solves[key] = &SolveEvent{TeamID: teamID, ChallengeID: challengeID, SolvedAt: at}
	s.solveCount[challengeID]++

	delta := ScoreDelta{
		TeamID:      teamID,
		ChallengeID: challengeID,
		Points:      award(s.solveCount[challengeID]),
		AwardedAt:   at,
	}
	s.deltas = append(s.deltas, delta)

	cp := delta
	return &cp, true, nil
}

func (s *MemoryScoreStore) Solved(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.solves[pairKey{team: teamID, challenge: challengeID}]
	return exists, nil
}

func (s *MemoryScoreStore) ListDeltas(ctx context.Context) ([]*ScoreDelta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*ScoreDelta, 0, len(s.deltas))
	for i := range s.deltas {
		cp := s.deltas[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryScoreStore) ListDeltasByTeam(ctx context.Context, teamID id.TeamID) ([]*ScoreDelta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ScoreDelta
	for i := range s.deltas {
		if s.deltas[i].TeamID == teamID {
			cp := s.deltas[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
