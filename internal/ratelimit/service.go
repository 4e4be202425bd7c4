package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"ctfbot/internal/ratelimit/metrics"
	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
)

// Service enforces the per-team submission limit. State is scoped per team
// key; teams never contend on each other's buckets.
type Service struct {
	store   BucketStore
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store BucketStore, limit int, window time.Duration, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		limit:  limit,
		window: window,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CheckTeam consumes one attempt from the team's sliding window. A store
// failure fails open with a warning: losing rate limiting briefly beats
// rejecting valid submissions during a redis blip.
func (s *Service) CheckTeam(ctx context.Context, teamID id.TeamID) (*Result, error) {
	if teamID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "team id is required")
	}

	key := "submit:team:" + SanitizeKeySegment(teamID.String())
	result, err := s.store.Allow(ctx, key, s.limit, s.window)
	if err != nil {
		s.logger.Warn("rate limit store unavailable, failing open",
			"team_id", teamID.String(),
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.FailOpens.Inc()
		}
		return &Result{Allowed: true, Remaining: 0, Limit: s.limit}, nil
	}
	if !result.Allowed && s.metrics != nil {
		s.metrics.Denials.Inc()
	}
	return result, nil
}

// Reset clears a team's bucket (admin path, e.g. after a false positive).
func (s *Service) Reset(ctx context.Context, teamID id.TeamID) error {
	if teamID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "team id is required")
	}
	key := "submit:team:" + SanitizeKeySegment(teamID.String())
	if err := s.store.Reset(ctx, key); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset rate limit")
	}
	if s.metrics != nil {
		s.metrics.Resets.Inc()
	}
	return nil
}
