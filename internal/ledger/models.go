package ledger

import (
	"time"

	id "ctfbot/pkg/domain"
)

// SubmissionRecord is one row of the append-only audit trail. Records are
// write-once: nothing in the system mutates or deletes them, and every other
// scoring fact is derivable from this history. The candidate flag is stored
// only as its salted hash.
type SubmissionRecord struct {
	Seq         int64
	TeamID      id.TeamID
	ChallengeID id.ChallengeID
	FlagHash    string
	Outcome     id.SubmissionOutcome
	SubmittedAt time.Time
}
