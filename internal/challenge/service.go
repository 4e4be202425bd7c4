package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/sentinel"
	"ctfbot/pkg/requestcontext"
)

// Service owns the challenge load path. It runs at setup time, not on the
// submission hot path.
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

// Load hashes the clear flag, discards it, and registers the challenge.
func (s *Service) Load(ctx context.Context, spec Spec) (*Challenge, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to prepare challenge")
	}

	c := &Challenge{
		ID:           id.ChallengeID(uuid.New()),
		Name:         spec.Name,
		Category:     spec.Category,
		Points:       spec.Points,
		FlagHash:     HashFlag(salt, spec.Flag),
		FlagSalt:     salt,
		OpensAt:      spec.OpensAt,
		ClosesAt:     spec.ClosesAt,
		DecayEnabled: spec.DecayEnabled,
		CreatedAt:    requestcontext.Now(ctx),
	}

	if err := s.store.Create(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "challenge already loaded")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load challenge")
	}

	s.logger.Info("challenge loaded",
		"challenge_id", c.ID.String(),
		"category", c.Category,
		"points", c.Points,
	)
	return c, nil
}

// Get returns a challenge by ID.
func (s *Service) Get(ctx context.Context, challengeID id.ChallengeID) (*Challenge, error) {
	if challengeID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "challenge id is required")
	}
	c, err := s.store.FindByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "challenge not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find challenge")
	}
	return c, nil
}

// List returns all loaded challenges ordered by category then name.
func (s *Service) List(ctx context.Context) ([]*Challenge, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list challenges")
	}
	return out, nil
}

// importDocument mirrors the challenge export shape of common scoreboard
// platforms: a top-level "challenges" array with name/category/value/flag.
type importDocument struct {
	Challenges []importEntry `json:"challenges"`
}

type importEntry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Value    int    `json:"value"`
	Flag     string `json:"flag"`
	Decay    bool   `json:"decay"`
}

// ImportResult reports the outcome of a bulk load.
type ImportResult struct {
	Loaded  int
	Skipped int
}

// Import bulk-loads challenges from a CTFd-style JSON document. Entries that
// are already loaded are skipped rather than failing the whole import, so an
// import can be re-run after a partial failure.
func (s *Service) Import(ctx context.Context, doc []byte, opensAt, closesAt time.Time) (*ImportResult, error) {
	var parsed importDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid challenge document")
	}
	if len(parsed.Challenges) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "challenge document is empty")
	}

	result := &ImportResult{}
	for _, entry := range parsed.Challenges {
		spec := Spec{
			Name:         entry.Name,
			Category:     entry.Category,
			Points:       entry.Value,
			Flag:         entry.Flag,
			OpensAt:      opensAt,
			ClosesAt:     closesAt,
			DecayEnabled: entry.Decay,
		}
		_, err := s.Load(ctx, spec)
		switch {
		case err == nil:
			result.Loaded++
		case dErrors.HasCode(err, dErrors.CodeConflict):
			result.Skipped++
		default:
			return nil, err
		}
	}

	s.logger.Info("challenges imported", "loaded", result.Loaded, "skipped", result.Skipped)
	return result, nil
}
