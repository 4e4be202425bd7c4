// Package domain holds shared domain primitives: typed identifiers and the
// submission outcome enum. Typed IDs prevent cross-type assignment at compile
// time (a TeamID can never be passed where a ChallengeID is expected).
package domain

import (
	"github.com/google/uuid"

	dErrors "ctfbot/pkg/domain-errors"
)

// TeamID identifies a registered team.
type TeamID uuid.UUID

// ChallengeID identifies a loaded challenge.
type ChallengeID uuid.UUID

// EventID identifies a competition event (one CTF round).
type EventID uuid.UUID

func (id TeamID) String() string      { return uuid.UUID(id).String() }
func (id ChallengeID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string     { return uuid.UUID(id).String() }

func (id TeamID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ChallengeID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// ParseTeamID validates a string as a non-nil team UUID.
func ParseTeamID(s string) (TeamID, error) {
	u, err := parseUUID(s, "team id")
	return TeamID(u), err
}

// ParseChallengeID validates a string as a non-nil challenge UUID.
func ParseChallengeID(s string) (ChallengeID, error) {
	u, err := parseUUID(s, "challenge id")
	return ChallengeID(u), err
}

// ParseEventID validates a string as a non-nil event UUID.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	return EventID(u), err
}

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be the nil UUID")
	}
	return u, nil
}
