package scoring

import (
	"context"
	"log/slog"
	"time"

	"ctfbot/internal/challenge"
	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/tx"
)

// Announcement describes a committed solve for downstream consumers.
type Announcement struct {
	TeamID        id.TeamID
	ChallengeID   id.ChallengeID
	ChallengeName string
	Category      string
	Points        int
	SolveRank     int
	SolvedAt      time.Time
}

// Announcer records a solve announcement inside the solve transaction; the
// outbox implementation makes it atomic with the ScoreDelta.
type Announcer interface {
	AnnounceSolve(ctx context.Context, a Announcement) error
}

// SolveRecorder appends the audit record for a first solve inside the solve
// transaction. A SolveEvent must never commit without its correct-first
// record, so the two share one transaction boundary.
type SolveRecorder interface {
	RecordFirstSolve(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, flagHash string, at time.Time) error
}

// DeltaSink receives committed score deltas; the leaderboard aggregator
// implements it.
type DeltaSink interface {
	ApplyDelta(delta ScoreDelta)
}

// Engine evaluates validated submissions. It is the only writer of
// SolveEvents and ScoreDeltas.
type Engine struct {
	store    ScoreStore
	runner   tx.Runner
	locks    *pairLocks
	decay    DecayPolicy
	announce Announcer
	recorder SolveRecorder
	sink     DeltaSink
	logger   *slog.Logger

	maxAttempts  int
	retryBackoff time.Duration
}

type EngineOption func(*Engine)

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithDecayPolicy(p DecayPolicy) EngineOption {
	return func(e *Engine) {
		e.decay = p
	}
}

func WithAnnouncer(a Announcer) EngineOption {
	return func(e *Engine) {
		e.announce = a
	}
}

func WithSolveRecorder(r SolveRecorder) EngineOption {
	return func(e *Engine) {
		e.recorder = r
	}
}

func WithDeltaSink(sink DeltaSink) EngineOption {
	return func(e *Engine) {
		e.sink = sink
	}
}

func WithLockPoolSize(n int) EngineOption {
	return func(e *Engine) {
		e.locks = newPairLocks(n)
	}
}

func NewEngine(store ScoreStore, runner tx.Runner, opts ...EngineOption) *Engine {
	e := &Engine{
		store:        store,
		runner:       runner,
		locks:        newPairLocks(256),
		decay:        DecayPolicy{Floor: 0.2, Rate: 15},
		logger:       slog.Default(),
		maxAttempts:  3,
		retryBackoff: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate scores one submission against its challenge.
//
// The window check and the hash comparison need no coordination; the
// check-and-set takes the pair lock so concurrent submissions for the same
// (team, challenge) serialize, then commits solve + delta + announcement as
// one transaction. Submissions for other pairs never wait here.
func (e *Engine) Evaluate(ctx context.Context, ch *challenge.Challenge, teamID id.TeamID, candidateFlag string, at time.Time) (*Result, error) {
	if !ch.OpenAt(at) {
		return &Result{Outcome: id.OutcomeChallengeClosed}, nil
	}
	if !challenge.VerifyFlag(ch, candidateFlag) {
		return &Result{Outcome: id.OutcomeIncorrect}, nil
	}

	mu := e.locks.lock(teamID, ch.ID)
	defer mu.Unlock()

	flagHash := challenge.HashFlag(ch.FlagSalt, candidateFlag)

	var (
		delta   *ScoreDelta
		created bool
		rank    int
	)
	apply := func(txCtx context.Context) error {
		var err error
		delta, created, err = e.store.ApplySolve(txCtx, teamID, ch.ID, at, func(solveCount int) int {
			rank = solveCount
			if !ch.DecayEnabled {
				return ch.Points
			}
			return e.decay.Award(ch.Points, solveCount)
		})
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		if e.announce != nil {
			if err := e.announce.AnnounceSolve(txCtx, Announcement{
				TeamID:        teamID,
				ChallengeID:   ch.ID,
				ChallengeName: ch.Name,
				Category:      ch.Category,
				Points:        delta.Points,
				SolveRank:     rank,
				SolvedAt:      at,
			}); err != nil {
				return err
			}
		}
		if e.recorder != nil {
			return e.recorder.RecordFirstSolve(txCtx, teamID, ch.ID, flagHash, at)
		}
		return nil
	}

	// Bounded retry: ApplySolve is idempotent (the conditional insert detects
	// an already-applied solve), so replaying after a storage failure cannot
	// double-award.
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		lastErr = e.runner.RunInTx(ctx, apply)
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeUnavailable, "submission deadline exceeded")
		}
		e.logger.Warn("solve transaction failed, retrying",
			"team_id", teamID.String(),
			"challenge_id", ch.ID.String(),
			"attempt", attempt,
			"error", lastErr,
		)
		select {
		case <-ctx.Done():
			return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeUnavailable, "submission deadline exceeded")
		case <-time.After(e.retryBackoff * time.Duration(attempt)):
		}
	}
	if lastErr != nil {
		return nil, dErrors.Wrap(lastErr, dErrors.CodeUnavailable, "failed to record solve")
	}

	if !created {
		return &Result{Outcome: id.OutcomeCorrectDuplicate}, nil
	}

	if e.sink != nil {
		e.sink.ApplyDelta(*delta)
	}
	e.logger.Info("solve recorded",
		"team_id", teamID.String(),
		"challenge_id", ch.ID.String(),
		"points", delta.Points,
		"solve_rank", rank,
	)
	return &Result{Outcome: id.OutcomeCorrectFirst, Points: delta.Points, SolveRank: rank}, nil
}
