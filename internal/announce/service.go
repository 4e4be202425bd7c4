package announce

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"ctfbot/internal/scoring"
)

// Service implements scoring.Announcer by writing outbox rows. Because the
// engine calls it inside the solve transaction, the announcement commits
// atomically with the ScoreDelta or not at all.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) AnnounceSolve(ctx context.Context, a scoring.Announcement) error {
	eventID := uuid.New()
	payload, err := json.Marshal(SolvePayload{
		ID:            eventID.String(),
		TeamID:        a.TeamID.String(),
		ChallengeID:   a.ChallengeID.String(),
		ChallengeName: a.ChallengeName,
		Category:      a.Category,
		Points:        a.Points,
		SolveRank:     a.SolveRank,
		FirstBlood:    a.SolveRank == 1,
		SolvedAt:      a.SolvedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal solve announcement: %w", err)
	}

	return s.store.Enqueue(ctx, &Event{
		ID:        eventID,
		Type:      TypeSolveRecorded,
		Payload:   payload,
		CreatedAt: a.SolvedAt,
	})
}
