package event

import (
	"context"

	id "ctfbot/pkg/domain"
)

// Store is the event registry.
//
// Execute is the atomic validate-then-mutate path: the store holds its lock
// (mutex or FOR UPDATE) across both the callback and the write, so two admins
// editing the same event serialize.
type Store interface {
	Create(ctx context.Context, e *Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Execute(ctx context.Context, eventID id.EventID, mutate func(e *Event) error) (*Event, error)
}
