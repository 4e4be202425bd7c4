package event

import (
	"strings"
	"time"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
)

// Event is one competition round: its name, where it runs, shared
// credentials for the platform, and the round window. Challenges loaded for
// the round default to this window.
type Event struct {
	ID        id.EventID
	Name      string
	URL       string
	Username  string
	Password  string
	TeamMode  bool
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
}

// Spec is the admin-facing event definition.
type Spec struct {
	Name     string
	URL      string
	TeamMode bool
	StartsAt time.Time
	EndsAt   time.Time
}

func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "event name is required")
	}
	if s.StartsAt.IsZero() || s.EndsAt.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "event start and end times are required")
	}
	if !s.EndsAt.After(s.StartsAt) {
		return dErrors.New(dErrors.CodeInvalidInput, "event must end after it starts")
	}
	return nil
}

// Info is the credential-free view served to non-admin queries.
type Info struct {
	ID       id.EventID `json:"id"`
	Name     string     `json:"name"`
	URL      string     `json:"url"`
	TeamMode bool       `json:"team_mode"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   time.Time  `json:"ends_at"`
}

func (e *Event) Info() Info {
	return Info{
		ID:       e.ID,
		Name:     e.Name,
		URL:      e.URL,
		TeamMode: e.TeamMode,
		StartsAt: e.StartsAt,
		EndsAt:   e.EndsAt,
	}
}
