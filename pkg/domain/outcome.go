package domain

// SubmissionOutcome is the user-visible result of one flag submission. Every
// outcome, including rejections, is persisted to the ledger verbatim.
type SubmissionOutcome string

const (
	// OutcomeCorrectFirst is the first correct submission of a challenge by a
	// team; the only outcome that awards points.
	OutcomeCorrectFirst SubmissionOutcome = "correct_first"
	// OutcomeCorrectDuplicate is a correct submission for an already-solved
	// (team, challenge) pair. No points.
	OutcomeCorrectDuplicate SubmissionOutcome = "correct_duplicate"
	OutcomeIncorrect        SubmissionOutcome = "incorrect"
	OutcomeChallengeClosed  SubmissionOutcome = "challenge_closed"
	OutcomeRateLimited      SubmissionOutcome = "rate_limited"
	OutcomeUnknownTeam      SubmissionOutcome = "unknown_team"
	OutcomeUnknownChallenge SubmissionOutcome = "unknown_challenge"
	// OutcomeError records an attempt whose evaluation failed internally after
	// retries. Kept in the ledger so the audit trail has no gaps.
	OutcomeError SubmissionOutcome = "error"
)

// Valid reports whether o is one of the known outcomes.
func (o SubmissionOutcome) Valid() bool {
	switch o {
	case OutcomeCorrectFirst, OutcomeCorrectDuplicate, OutcomeIncorrect,
		OutcomeChallengeClosed, OutcomeRateLimited, OutcomeUnknownTeam,
		OutcomeUnknownChallenge, OutcomeError:
		return true
	}
	return false
}

func (o SubmissionOutcome) String() string { return string(o) }
