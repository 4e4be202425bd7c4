package challenge

import (
	"strings"
	"time"

	id "ctfbot/pkg/domain"
	dErrors "ctfbot/pkg/domain-errors"
)

// Challenge is immutable once loaded: the round never edits a live challenge,
// it loads a new set for the next round. The clear flag is hashed at load
// time and never stored.
type Challenge struct {
	ID           id.ChallengeID
	Name         string
	Category     string
	Points       int
	FlagHash     string
	FlagSalt     string
	OpensAt      time.Time
	ClosesAt     time.Time
	DecayEnabled bool
	CreatedAt    time.Time
}

// Spec is the admin-facing challenge definition; Flag arrives in the clear
// exactly once, here.
type Spec struct {
	Name         string
	Category     string
	Points       int
	Flag         string
	OpensAt      time.Time
	ClosesAt     time.Time
	DecayEnabled bool
}

// Validate enforces load-time invariants before the flag is hashed.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "challenge name is required")
	}
	if strings.TrimSpace(s.Category) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "challenge category is required")
	}
	if s.Points < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "challenge points must be >= 0")
	}
	if s.Flag == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "challenge flag is required")
	}
	if !s.ClosesAt.IsZero() && !s.OpensAt.IsZero() && !s.ClosesAt.After(s.OpensAt) {
		return dErrors.New(dErrors.CodeInvalidInput, "challenge must close after it opens")
	}
	return nil
}

// OpenAt reports whether the challenge accepts submissions at t.
func (c *Challenge) OpenAt(t time.Time) bool {
	if !c.OpensAt.IsZero() && t.Before(c.OpensAt) {
		return false
	}
	if !c.ClosesAt.IsZero() && !t.Before(c.ClosesAt) {
		return false
	}
	return true
}
