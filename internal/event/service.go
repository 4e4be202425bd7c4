package event

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
	"ctfbot/pkg/platform/sentinel"
	"ctfbot/pkg/requestcontext"
)

// Service owns competition event lifecycle: setup, schedule changes, URL and
// credential updates. All setup-time; nothing here runs on the hot path.
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

// Create registers a new competition event.
func (s *Service) Create(ctx context.Context, spec Spec) (*Event, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	e := &Event{
		ID:        id.EventID(uuid.New()),
		Name:      strings.TrimSpace(spec.Name),
		URL:       strings.TrimSpace(spec.URL),
		TeamMode:  spec.TeamMode,
		StartsAt:  spec.StartsAt,
		EndsAt:    spec.EndsAt,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "event already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
	}

	s.logger.Info("event created", "event_id", e.ID.String(), "name", e.Name)
	return e, nil
}

// ChangeTime reschedules an event's round window.
func (s *Service) ChangeTime(ctx context.Context, eventID id.EventID, startsAt, endsAt time.Time) (*Event, error) {
	if startsAt.IsZero() || endsAt.IsZero() || !endsAt.After(startsAt) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event must end after it starts")
	}
	return s.execute(ctx, eventID, func(e *Event) error {
		e.StartsAt = startsAt
		e.EndsAt = endsAt
		return nil
	})
}

// ChangeURL updates the event's platform URL.
func (s *Service) ChangeURL(ctx context.Context, eventID id.EventID, url string) (*Event, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event url is required")
	}
	return s.execute(ctx, eventID, func(e *Event) error {
		e.URL = url
		return nil
	})
}

// ChangeMode converts an event between team and solo play.
func (s *Service) ChangeMode(ctx context.Context, eventID id.EventID, teamMode bool) (*Event, error) {
	return s.execute(ctx, eventID, func(e *Event) error {
		e.TeamMode = teamMode
		return nil
	})
}

// SetCredentials stores the shared platform credentials for the event.
func (s *Service) SetCredentials(ctx context.Context, eventID id.EventID, username, password string) (*Event, error) {
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	return s.execute(ctx, eventID, func(e *Event) error {
		e.Username = username
		e.Password = password
		return nil
	})
}

// GetInfo returns the credential-free event view.
func (s *Service) GetInfo(ctx context.Context, eventID id.EventID) (*Info, error) {
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event id is required")
	}
	e, err := s.store.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to find event")
	}
	info := e.Info()
	return &info, nil
}

// List returns all events ordered by start time.
func (s *Service) List(ctx context.Context) ([]*Event, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return out, nil
}

func (s *Service) execute(ctx context.Context, eventID id.EventID, mutate func(e *Event) error) (*Event, error) {
	if eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "event id is required")
	}
	e, err := s.store.Execute(ctx, eventID, mutate)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
		}
		var de *dErrors.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update event")
	}
	return e, nil
}
