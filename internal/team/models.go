package team

import (
	"strings"
	"time"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
)

// Team identity is immutable after registration; scores are derived from the
// ledger, never stored on the team.
type Team struct {
	ID           id.TeamID
	Name         string
	TokenHash    string
	RegisteredAt time.Time
}

// Spec is the registration request.
type Spec struct {
	Name string
}

func (s Spec) Validate() error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "team name is required")
	}
	if len(name) > 64 {
		return dErrors.New(dErrors.CodeInvalidInput, "team name must be at most 64 characters")
	}
	return nil
}

// Registration carries the one-time clear token back to the caller. The
// token is never recoverable afterwards; only its hash is stored.
type Registration struct {
	Team  *Team
	Token string
}
