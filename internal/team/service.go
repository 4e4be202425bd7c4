package team

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/sentinel"
	"ctfbot/pkg/requestcontext"
)

// Service owns team registration and token verification. Registration is a
// setup-time operation; Authenticate runs on every submission, so it verifies
// the JWT signature before touching the store.
type Service struct {
	store      Store
	signingKey []byte
	tokenTTL   time.Duration
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.tokenTTL = ttl
	}
}

func New(store Store, signingKey string, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		signingKey: []byte(signingKey),
		tokenTTL:   30 * 24 * time.Hour,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Register creates a team and issues its API token. The clear token is
// returned exactly once; only its hash survives.
func (s *Service) Register(ctx context.Context, spec Spec) (*Registration, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	teamID := id.TeamID(uuid.New())

	token, err := s.issueToken(teamID, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue team token")
	}

	t := &Team{
		ID:           teamID,
		Name:         strings.TrimSpace(spec.Name),
		TokenHash:    hashToken(token),
		RegisteredAt: now,
	}
	if err := s.store.Create(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "team name is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register team")
	}

	s.logger.Info("team registered", "team_id", t.ID.String())
	return &Registration{Team: t, Token: token}, nil
}

// Get returns a team by ID.
func (s *Service) Get(ctx context.Context, teamID id.TeamID) (*Team, error) {
	if teamID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "team id is required")
	}
	t, err := s.store.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "team not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find team")
	}
	return t, nil
}

// Authenticate resolves a bearer token to a registered team. The token hash
// must match the stored one, so a re-signed token from a leaked key alone is
// not enough without the original registration token.
func (s *Service) Authenticate(ctx context.Context, token string) (*Team, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "team token is required")
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid team token")
	}

	teamID, err := id.ParseTeamID(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid team token")
	}

	t, err := s.store.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unknown team")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to authenticate team")
	}
	if t.TokenHash != hashToken(token) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid team token")
	}
	return t, nil
}

func (s *Service) issueToken(teamID id.TeamID, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   teamID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		Issuer:    "ctfbot",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func hashToken(token string) string {
	sum := sha3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
