package announce

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the announcement outbox. Enqueue joins the caller's transaction
// when one is on the context; the worker drains rows with ListUnpublished and
// retires them with MarkPublished.
type Store interface {
	Enqueue(ctx context.Context, event *Event) error
	ListUnpublished(ctx context.Context, limit int) ([]*Event, error)
	MarkPublished(ctx context.Context, eventID uuid.UUID, at time.Time) error
}
