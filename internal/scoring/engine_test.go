package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"ctfbot/internal/challenge"
	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/tx"
)

const testFlag = "flag{correct}"

type EngineSuite struct {
	suite.Suite
	ctx   context.Context
	store *MemoryScoreStore
	now   time.Time
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryScoreStore()
	s.now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func (s *EngineSuite) newEngine(opts ...EngineOption) *Engine {
	return NewEngine(s.store, tx.NoopRunner{}, opts...)
}

func (s *EngineSuite) newChallenge(points int, decay bool) *challenge.Challenge {
	salt, err := challenge.NewSalt()
	s.Require().NoError(err)
	return &challenge.Challenge{
		ID:           id.ChallengeID(uuid.New()),
		Name:         "pwn-101",
		Category:     "pwn",
		Points:       points,
		FlagSalt:     salt,
		FlagHash:     challenge.HashFlag(salt, testFlag),
		OpensAt:      s.now.Add(-time.Hour),
		ClosesAt:     s.now.Add(time.Hour),
		DecayEnabled: decay,
	}
}

func (s *EngineSuite) TestFirstCorrectSubmission() {
	engine := s.newEngine()
	ch := s.newChallenge(500, false)
	teamID := id.TeamID(uuid.New())

	result, err := engine.Evaluate(s.ctx, ch, teamID, testFlag, s.now)
	s.Require().NoError(err)
	s.Equal(id.OutcomeCorrectFirst, result.Outcome)
	s.Equal(500, result.Points)
	s.Equal(1, result.SolveRank)

	solved, err := s.store.Solved(s.ctx, teamID, ch.ID)
	s.Require().NoError(err)
	s.True(solved)

	deltas, err := s.store.ListDeltasByTeam(s.ctx, teamID)
	s.Require().NoError(err)
	s.Require().Len(deltas, 1)
	s.Equal(500, deltas[0].Points)
}

func (s *EngineSuite) TestDuplicateAwardsNothing() {
	engine := s.newEngine()
	ch := s.newChallenge(500, false)
	teamID := id.TeamID(uuid.New())

	first, err := engine.Evaluate(s.ctx, ch, teamID, testFlag, s.now)
	s.Require().NoError(err)
	s.Equal(id.OutcomeCorrectFirst, first.Outcome)

	second, err := engine.Evaluate(s.ctx, ch, teamID, testFlag, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(id.OutcomeCorrectDuplicate, second.Outcome)
	s.Zero(second.Points)

	deltas, err := s.store.ListDeltasByTeam(s.ctx, teamID)
	s.Require().NoError(err)
	s.Len(deltas, 1)
}

func (s *EngineSuite) TestIncorrectFlag() {
	engine := s.newEngine()
	ch := s.newChallenge(500, false)
	teamID := id.TeamID(uuid.New())

	result, err := engine.Evaluate(s.ctx, ch, teamID, "flag{wrong}", s.now)
	s.Require().NoError(err)
	s.Equal(id.OutcomeIncorrect, result.Outcome)

	solved, err := s.store.Solved(s.ctx, teamID, ch.ID)
	s.Require().NoError(err)
	s.False(solved)
}

func (s *EngineSuite) TestClosedChallenge() {
	engine := s.newEngine()
	ch := s.newChallenge(500, false)
	teamID := id.TeamID(uuid.New())

	s.Run("before open", func() {
		result, err := engine.Evaluate(s.ctx, ch, teamID, testFlag, ch.OpensAt.Add(-time.Second))
		s.Require().NoError(err)
		s.Equal(id.OutcomeChallengeClosed, result.Outcome)
	})

	s.Run("after close", func() {
		result, err := engine.Evaluate(s.ctx, ch, teamID, testFlag, ch.ClosesAt)
		s.Require().NoError(err)
		s.Equal(id.OutcomeChallengeClosed, result.Outcome)
	})

	s.Run("correct flag outside window never scores", func() {
		solved, err := s.store.Solved(s.ctx, teamID, ch.ID)
		s.Require().NoError(err)
		s.False(solved)
	})
}

func (s *EngineSuite) TestDecayAppliesPerSolveRank() {
	engine := s.newEngine(WithDecayPolicy(DecayPolicy{Floor: 0.2, Rate: 15}))
	ch := s.newChallenge(500, true)

	first, err := engine.Evaluate(s.ctx, ch, id.TeamID(uuid.New()), testFlag, s.now)
	s.Require().NoError(err)
	s.Equal(500, first.Points)
	s.Equal(1, first.SolveRank)

	second, err := engine.Evaluate(s.ctx, ch, id.TeamID(uuid.New()), testFlag, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(2, second.SolveRank)
	s.Less(second.Points, first.Points)
}

// The double-award guard: many goroutines race the same (team, challenge)
// pair and exactly one wins.
func (s *EngineSuite) TestConcurrentSubmissionsAwardOnce() {
	engine := s.newEngine()
	ch := s.newChallenge(500, false)
	teamID := id.TeamID(uuid.New())

	const goroutines = 32
	results := make([]*Result, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = engine.Evaluate(s.ctx, ch, teamID, testFlag, s.now)
		}()
	}
	wg.Wait()

	var firsts, duplicates int
	for i := range goroutines {
		s.Require().NoError(errs[i])
		switch results[i].Outcome {
		case id.OutcomeCorrectFirst:
			firsts++
		case id.OutcomeCorrectDuplicate:
			duplicates++
		default:
			s.Failf("unexpected outcome", "got %s", results[i].Outcome)
		}
	}
	s.Equal(1, firsts)
	s.Equal(goroutines-1, duplicates)

	deltas, err := s.store.ListDeltasByTeam(s.ctx, teamID)
	s.Require().NoError(err)
	s.Len(deltas, 1)
}

func (s *EngineSuite) TestConcurrentTeamsEachScore() {
	engine := s.newEngine()
	ch := s.newChallenge(500, false)

	const teams = 16
	teamIDs := make([]id.TeamID, teams)
	for i := range teams {
		teamIDs[i] = id.TeamID(uuid.New())
	}

	var wg sync.WaitGroup
	for i := range teams {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Evaluate(s.ctx, ch, teamIDs[i], testFlag, s.now)
			s.NoError(err)
		}()
	}
	wg.Wait()

	deltas, err := s.store.ListDeltas(s.ctx)
	s.Require().NoError(err)
	s.Len(deltas, teams)
}

// failingRunner fails the first n transactions, then delegates.
type failingRunner struct {
	mu       sync.Mutex
	failures int
}

func (r *failingRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return errors.New("transient storage failure")
	}
	r.mu.Unlock()
	return fn(ctx)
}

func (s *EngineSuite) TestRetriesTransientFailures() {
	engine := NewEngine(s.store, &failingRunner{failures: 2})
	ch := s.newChallenge(500, false)
	teamID := id.TeamID(uuid.New())

	result, err := engine.Evaluate(s.ctx, ch, teamID, testFlag, s.now)
	s.Require().NoError(err)
	s.Equal(id.OutcomeCorrectFirst, result.Outcome)

	deltas, err := s.store.ListDeltasByTeam(s.ctx, teamID)
	s.Require().NoError(err)
	s.Len(deltas, 1)
}

func (s *EngineSuite) TestExhaustedRetriesReportUnavailable() {
	engine := NewEngine(s.store, &failingRunner{failures: 10})
	ch := s.newChallenge(500, false)

	_, err := engine.Evaluate(s.ctx, ch, id.TeamID(uuid.New()), testFlag, s.now)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

type recordingAnnouncer struct {
	mu            sync.Mutex
	announcements []Announcement
}

func (a *recordingAnnouncer) AnnounceSolve(ctx context.Context, ann Announcement) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.announcements = append(a.announcements, ann)
	return nil
}

type firstSolveRecord struct {
	teamID      id.TeamID
	challengeID id.ChallengeID
	flagHash    string
	at          time.Time
}

type recordingSolveRecorder struct {
	mu      sync.Mutex
	records []firstSolveRecord
}

func (r *recordingSolveRecorder) RecordFirstSolve(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, flagHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, firstSolveRecord{teamID, challengeID, flagHash, at})
	return nil
}

// The recorder fires inside the solve transaction, once per first solve:
// duplicates and incorrect submissions never reach it.
func (s *EngineSuite) TestRecordsFirstSolveOnly() {
	recorder := &recordingSolveRecorder{}
	engine := s.newEngine(WithSolveRecorder(recorder))
	ch := s.newChallenge(500, false)
	teamID := id.TeamID(uuid.New())

	_, err := engine.Evaluate(s.ctx, ch, teamID, "flag{wrong}", s.now)
	s.Require().NoError(err)
	_, err = engine.Evaluate(s.ctx, ch, teamID, testFlag, s.now)
	s.Require().NoError(err)
	_, err = engine.Evaluate(s.ctx, ch, teamID, testFlag, s.now.Add(time.Minute))
	s.Require().NoError(err)

	s.Require().Len(recorder.records, 1)
	s.Equal(teamID, recorder.records[0].teamID)
	s.Equal(ch.ID, recorder.records[0].challengeID)
	s.Equal(challenge.HashFlag(ch.FlagSalt, testFlag), recorder.records[0].flagHash)
	s.Equal(s.now, recorder.records[0].at)
}

func (s *EngineSuite) TestAnnouncesFirstSolveOnly() {
	announcer := &recordingAnnouncer{}
	engine := s.newEngine(WithAnnouncer(announcer))
	ch := s.newChallenge(500, false)
	teamID := id.TeamID(uuid.New())

	_, err := engine.Evaluate(s.ctx, ch, teamID, testFlag, s.now)
	s.Require().NoError(err)
	_, err = engine.Evaluate(s.ctx, ch, teamID, testFlag, s.now.Add(time.Minute))
	s.Require().NoError(err)

	s.Require().Len(announcer.announcements, 1)
	s.Equal(teamID, announcer.announcements[0].TeamID)
	s.Equal(1, announcer.announcements[0].SolveRank)
	s.Equal(500, announcer.announcements[0].Points)
}
