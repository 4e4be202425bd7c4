//go:build integration

package scoring_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ctfbot/internal/challenge"
	"ctfbot/internal/gateway"
	"ctfbot/internal/ledger"
	"ctfbot/internal/scoring"
	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/tx"
	"ctfbot/pkg/testutil/containers"
)

// EnginePostgresSuite exercises the full solve transaction: solve, delta, and
// correct-first ledger record must commit together or not at all.
type EnginePostgresSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	store  *scoring.PostgresScoreStore
	ledger *ledger.PostgresStore
	runner *tx.SQLRunner
	now    time.Time
}

func TestEnginePostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(EnginePostgresSuite))
}

func (s *EnginePostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = scoring.NewPostgresScoreStore(s.pg.DB)
	s.ledger = ledger.NewPostgres(s.pg.DB)
	s.runner = tx.NewSQLRunner(s.pg.DB)
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func (s *EnginePostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "solves", "score_deltas", "submissions"))
}

func (s *EnginePostgresSuite) newChallenge() *challenge.Challenge {
	salt, err := challenge.NewSalt()
	s.Require().NoError(err)
	return &challenge.Challenge{
		ID:       id.ChallengeID(uuid.New()),
		Name:     "pwn-101",
		Category: "pwn",
		Points:   500,
		FlagSalt: salt,
		FlagHash: challenge.HashFlag(salt, "flag{x}"),
		OpensAt:  s.now.Add(-time.Hour),
		ClosesAt: s.now.Add(time.Hour),
	}
}

// flakyRecorder appends through the real recorder, then fails the first n
// transactions. The writes have all happened by then, so the rollback must
// erase the solve, the delta, and the just-appended ledger row.
type flakyRecorder struct {
	inner    scoring.SolveRecorder
	mu       sync.Mutex
	failures int
}

func (r *flakyRecorder) RecordFirstSolve(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, flagHash string, at time.Time) error {
	if err := r.inner.RecordFirstSolve(ctx, teamID, challengeID, flagHash, at); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("injected failure")
	}
	return nil
}

// An aborted solve transaction leaves nothing behind; the retry replays it and
// exactly one solve, one delta, and one correct-first record commit.
func (s *EnginePostgresSuite) TestInterruptedSolveReplaysToExactlyOnce() {
	ctx := context.Background()
	ch := s.newChallenge()
	teamID := id.TeamID(uuid.New())

	engine := scoring.NewEngine(s.store, s.runner,
		scoring.WithSolveRecorder(&flakyRecorder{
			inner:    gateway.NewSolveRecorder(s.ledger),
			failures: 1,
		}),
	)

	result, err := engine.Evaluate(ctx, ch, teamID, "flag{x}", s.now)
	s.Require().NoError(err)
	s.Equal(id.OutcomeCorrectFirst, result.Outcome)

	deltas, err := s.store.ListDeltasByTeam(ctx, teamID)
	s.Require().NoError(err)
	s.Len(deltas, 1)

	records, err := s.ledger.ListByTeam(ctx, teamID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(id.OutcomeCorrectFirst, records[0].Outcome)
}

// When every attempt aborts, the rollback covers the ledger record too: no
// solve, no delta, no orphaned correct-first record.
func (s *EnginePostgresSuite) TestAbortedSolveLeavesNoPartialState() {
	ctx := context.Background()
	ch := s.newChallenge()
	teamID := id.TeamID(uuid.New())

	engine := scoring.NewEngine(s.store, s.runner,
		scoring.WithSolveRecorder(&flakyRecorder{
			inner:    gateway.NewSolveRecorder(s.ledger),
			failures: 100,
		}),
	)

	_, err := engine.Evaluate(ctx, ch, teamID, "flag{x}", s.now)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	solved, err := s.store.Solved(ctx, teamID, ch.ID)
	s.Require().NoError(err)
	s.False(solved)

	deltas, err := s.store.ListDeltasByTeam(ctx, teamID)
	s.Require().NoError(err)
	s.Empty(deltas)

	records, err := s.ledger.ListByTeam(ctx, teamID)
	s.Require().NoError(err)
	s.Empty(records)
}
