package announce

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"ctfbot/pkg/platform/sentinel"
)

// MemoryStore buffers outbox events in memory for development and tests.
type MemoryStore struct {
	mu     sync.Mutex
	events []*Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Enqueue(ctx context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *event
	s.events = append(s.events, &cp)
	return nil
}

func (s *MemoryStore) ListUnpublished(ctx context.Context, limit int) ([]*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Event
	for _, e := range s.events {
		if e.PublishedAt != nil {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkPublished(ctx context.Context, eventID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.ID == eventID {
			t := at
			e.PublishedAt = &t
			return nil
		}
	}
	return sentinel.ErrNotFound
}
