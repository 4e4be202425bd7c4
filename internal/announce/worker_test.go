package announce

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"ctfbot/internal/scoring"
	id "ctfbot/pkg/domain"
)

// fakeProducer records produced messages and can be made to fail.
type fakeProducer struct {
	mu       sync.Mutex
	produced []json.RawMessage
	failures int
}

func (p *fakeProducer) Produce(ctx context.Context, key string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.produced = append(p.produced, payload)
	return nil
}

func (p *fakeProducer) Close() {}

type WorkerSuite struct {
	suite.Suite
	ctx      context.Context
	store    *MemoryStore
	producer *fakeProducer
	svc      *Service
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryStore()
	s.producer = &fakeProducer{}
	s.svc = NewService(s.store)
}

func (s *WorkerSuite) announce(rank int) {
	err := s.svc.AnnounceSolve(s.ctx, scoring.Announcement{
		TeamID:        id.TeamID(uuid.New()),
		ChallengeID:   id.ChallengeID(uuid.New()),
		ChallengeName: "pwn-101",
		Category:      "pwn",
		Points:        500,
		SolveRank:     rank,
		SolvedAt:      time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
}

func (s *WorkerSuite) TestDrainOncePublishesAndMarks() {
	s.announce(1)
	s.announce(2)

	worker := NewWorker(s.store, s.producer)
	s.Require().NoError(worker.DrainOnce(s.ctx))

	s.Len(s.producer.produced, 2)

	pending, err := s.store.ListUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *WorkerSuite) TestSolvePayloadShape() {
	s.announce(1)

	worker := NewWorker(s.store, s.producer)
	s.Require().NoError(worker.DrainOnce(s.ctx))
	s.Require().Len(s.producer.produced, 1)

	var payload SolvePayload
	require.NoError(s.T(), json.Unmarshal(s.producer.produced[0], &payload))
	s.NotEmpty(payload.ID)
	s.Equal("pwn-101", payload.ChallengeName)
	s.Equal(500, payload.Points)
	s.True(payload.FirstBlood)
}

func (s *WorkerSuite) TestLaterSolveIsNotFirstBlood() {
	s.announce(3)

	worker := NewWorker(s.store, s.producer)
	s.Require().NoError(worker.DrainOnce(s.ctx))
	s.Require().Len(s.producer.produced, 1)

	var payload SolvePayload
	require.NoError(s.T(), json.Unmarshal(s.producer.produced[0], &payload))
	s.False(payload.FirstBlood)
	s.Equal(3, payload.SolveRank)
}

// At-least-once: a produce failure leaves the event unpublished so the next
// drain retries it.
func (s *WorkerSuite) TestFailedProduceIsRetriedNextDrain() {
	s.announce(1)
	s.producer.failures = 1

	worker := NewWorker(s.store, s.producer)
	s.Require().Error(worker.DrainOnce(s.ctx))

	pending, err := s.store.ListUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(pending, 1)

	s.Require().NoError(worker.DrainOnce(s.ctx))
	s.Len(s.producer.produced, 1)

	pending, err = s.store.ListUnpublished(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *WorkerSuite) TestRunStopsOnCancel() {
	worker := NewWorker(s.store, s.producer, WithPollInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(s.ctx)

	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	s.announce(1)
	s.Eventually(func() bool {
		pending, err := s.store.ListUnpublished(s.ctx, 10)
		return err == nil && len(pending) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.Require().ErrorIs(<-done, context.Canceled)
}
