package announce

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one outbox row. Events are written in the same transaction as the
// state change they describe and published to Kafka by the worker afterwards
// (transactional outbox), so an announcement exists iff its solve committed.
type Event struct {
	ID          uuid.UUID
	Type        string
	Payload     json.RawMessage
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// Event types.
const (
	TypeSolveRecorded = "solve_recorded"
)

// SolvePayload is the JSON body of a solve_recorded event. Delivery is
// at-least-once; consumers dedupe on ID.
type SolvePayload struct {
	ID            string    `json:"id"`
	TeamID        string    `json:"team_id"`
	ChallengeID   string    `json:"challenge_id"`
	ChallengeName string    `json:"challenge_name"`
	Category      string    `json:"category"`
	Points        int       `json:"points"`
	SolveRank     int       `json:"solve_rank"`
	FirstBlood    bool      `json:"first_blood"`
	SolvedAt      time.Time `json:"solved_at"`
}
