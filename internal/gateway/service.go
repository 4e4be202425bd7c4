// Package gateway is the submission entry point: it resolves identities,
// enforces the per-team rate limit, drives the scoring engine, and guarantees
// that every attempt — accepted or rejected — lands in the ledger exactly
// once.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ctfbot/internal/challenge"
	gwmetrics "ctfbot/internal/gateway/metrics"
	"ctfbot/internal/ledger"
	"ctfbot/internal/ratelimit"
	"ctfbot/internal/scoring"
	"ctfbot/internal/team"
	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/sentinel"
	"ctfbot/pkg/requestcontext"
)

// Ports. Narrow interfaces keep the gateway testable against mocks.
type (
	// TeamFinder resolves submitters.
	TeamFinder interface {
		FindByID(ctx context.Context, teamID id.TeamID) (*team.Team, error)
	}

	// ChallengeFinder resolves submission targets.
	ChallengeFinder interface {
		FindByID(ctx context.Context, challengeID id.ChallengeID) (*challenge.Challenge, error)
	}

	// Limiter enforces the per-team submission budget.
	Limiter interface {
		CheckTeam(ctx context.Context, teamID id.TeamID) (*ratelimit.Result, error)
	}

	// Engine evaluates a validated submission.
	Engine interface {
		Evaluate(ctx context.Context, ch *challenge.Challenge, teamID id.TeamID, candidateFlag string, at time.Time) (*scoring.Result, error)
	}

	// Ledger appends the audit record.
	Ledger interface {
		Append(ctx context.Context, rec *ledger.SubmissionRecord) error
	}
)

// Response is what the presentation layer renders.
type Response struct {
	Outcome id.SubmissionOutcome
	Points  int
	// RateLimit carries the bucket state when the outcome is rate_limited.
	RateLimit *ratelimit.Result
}

// Service wires the submission path.
type Service struct {
	teams      TeamFinder
	challenges ChallengeFinder
	limiter    Limiter
	engine     Engine
	ledger     Ledger

	deadline time.Duration
	metrics  *gwmetrics.Metrics
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *gwmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDeadline bounds a single submission's processing time.
func WithDeadline(d time.Duration) Option {
	return func(s *Service) {
		s.deadline = d
	}
}

func New(teams TeamFinder, challenges ChallengeFinder, limiter Limiter, engine Engine, ldg Ledger, opts ...Option) *Service {
	svc := &Service{
		teams:      teams,
		challenges: challenges,
		limiter:    limiter,
		engine:     engine,
		ledger:     ldg,
		deadline:   5 * time.Second,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Submit processes one flag submission end to end.
func (s *Service) Submit(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, candidateFlag string) (*Response, error) {
	start := time.Now()
	resp, err := s.submit(ctx, teamID, challengeID, candidateFlag)
	if s.metrics != nil {
		s.metrics.SubmitDuration.Observe(time.Since(start).Seconds())
		outcome := string(id.OutcomeError)
		if resp != nil {
			outcome = string(resp.Outcome)
		}
		s.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
	return resp, err
}

func (s *Service) submit(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, candidateFlag string) (*Response, error) {
	if teamID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "team id is required")
	}
	if challengeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "challenge id is required")
	}
	if candidateFlag == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "flag is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	now := requestcontext.Now(ctx)

	if _, err := s.teams.FindByID(ctx, teamID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.record(ctx, teamID, challengeID, challenge.HashFlag("", candidateFlag), id.OutcomeUnknownTeam, now, nil)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve team")
	}

	ch, err := s.challenges.FindByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.record(ctx, teamID, challengeID, challenge.HashFlag("", candidateFlag), id.OutcomeUnknownChallenge, now, nil)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve challenge")
	}

	flagHash := challenge.HashFlag(ch.FlagSalt, candidateFlag)

	// Rate-limited attempts are ledgered but never consume a scoring attempt.
	limit, err := s.limiter.CheckTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !limit.Allowed {
		return s.record(ctx, teamID, challengeID, flagHash, id.OutcomeRateLimited, now, limit)
	}

	result, err := s.engine.Evaluate(ctx, ch, teamID, candidateFlag, now)
	if err != nil {
		// The attempt still gets its audit record even when the submission
		// deadline expired; the scoring failure is surfaced to the caller as
		// transient, never silently dropped.
		auditCtx := context.WithoutCancel(ctx)
		if _, recErr := s.record(auditCtx, teamID, challengeID, flagHash, id.OutcomeError, now, nil); recErr != nil {
			s.logger.Error("failed to ledger errored submission",
				"team_id", teamID.String(),
				"challenge_id", challengeID.String(),
				"error", recErr,
			)
		}
		return nil, err
	}

	// A first solve was already ledgered inside the solve transaction by the
	// engine's recorder; appending here again would duplicate the record.
	if result.Outcome == id.OutcomeCorrectFirst {
		return &Response{Outcome: result.Outcome, Points: result.Points}, nil
	}

	resp, recErr := s.record(ctx, teamID, challengeID, flagHash, result.Outcome, now, nil)
	if recErr != nil {
		return nil, recErr
	}
	resp.Points = result.Points
	return resp, nil
}

// record appends the attempt to the ledger and shapes the response. Durable
// append happens before the caller sees success.
func (s *Service) record(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, flagHash string, outcome id.SubmissionOutcome, at time.Time, limit *ratelimit.Result) (*Response, error) {
	rec := &ledger.SubmissionRecord{
		TeamID:      teamID,
		ChallengeID: challengeID,
		FlagHash:    flagHash,
		Outcome:     outcome,
		SubmittedAt: at,
	}
	if err := s.ledger.Append(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record submission")
	}
	return &Response{Outcome: outcome, RateLimit: limit}, nil
}
