package assignment

import (
	"time"

	id "ctfbot/pkg/domain"
)

// Assignment records a team member claiming a challenge to work on. Purely
// coordinational: claims have no effect on scoring.
type Assignment struct {
	TeamID      id.TeamID
	ChallengeID id.ChallengeID
	Member      string
	ClaimedAt   time.Time
}
