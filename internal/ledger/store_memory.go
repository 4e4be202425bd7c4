package ledger

import (
	"context"
	"sync"

	id "ctfbot/pkg/domain"
)

// MemoryStore is the in-process ledger for development and tests. It keeps
// the same append-only discipline as the durable store: records are copied in
// and out, never handed back by reference.
type MemoryStore struct {
	mu      sync.RWMutex
	nextSeq int64
	records []SubmissionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextSeq: 1}
}

func (s *MemoryStore) Append(ctx context.Context, rec *SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Seq = s.nextSeq
	s.nextSeq++
	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) ListByTeam(ctx context.Context, teamID id.TeamID) ([]*SubmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*SubmissionRecord
	for i := range s.records {
		if s.records[i].TeamID == teamID {
			cp := s.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListByChallenge(ctx context.Context, challengeID id.ChallengeID) ([]*SubmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*SubmissionRecord
	for i := range s.records {
		if s.records[i].ChallengeID == challengeID {
			cp := s.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
