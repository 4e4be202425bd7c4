package assignment

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/sentinel"
	"ctfbot/pkg/requestcontext"
)

const maxMemberLen = 64

// Service coordinates who on a team is working on which challenge. Claims are
// advisory and never influence scoring.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Claim records that a member started working on a challenge.
func (s *Service) Claim(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, member string) (*Assignment, error) {
	member, err := validateClaim(teamID, challengeID, member)
	if err != nil {
		return nil, err
	}

	a := &Assignment{
		TeamID:      teamID,
		ChallengeID: challengeID,
		Member:      member,
		ClaimedAt:   requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "challenge already claimed by this member")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create claim")
	}

	s.logger.Info("challenge claimed",
		"team_id", teamID.String(),
		"challenge_id", challengeID.String(),
		"member", member)
	return a, nil
}

// Unclaim releases a member's claim on a challenge.
func (s *Service) Unclaim(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID, member string) error {
	member, err := validateClaim(teamID, challengeID, member)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, teamID, challengeID, member); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete claim")
	}

	s.logger.Info("challenge released",
		"team_id", teamID.String(),
		"challenge_id", challengeID.String(),
		"member", member)
	return nil
}

// ListByTeam returns all of a team's active claims.
func (s *Service) ListByTeam(ctx context.Context, teamID id.TeamID) ([]*Assignment, error) {
	if teamID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "team id is required")
	}
	out, err := s.store.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}
	return out, nil
}

// ListByChallenge returns a team's claims on a single challenge.
func (s *Service) ListByChallenge(ctx context.Context, teamID id.TeamID, challengeID id.ChallengeID) ([]*Assignment, error) {
	if teamID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "team id is required")
	}
	if challengeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "challenge id is required")
	}
	out, err := s.store.ListByChallenge(ctx, teamID, challengeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}
	return out, nil
}

func validateClaim(teamID id.TeamID, challengeID id.ChallengeID, member string) (string, error) {
	if teamID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "team id is required")
	}
	if challengeID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "challenge id is required")
	}
	member = strings.TrimSpace(member)
	if member == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "member is required")
	}
	if len(member) > maxMemberLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "member name too long")
	}
	return member, nil
}
