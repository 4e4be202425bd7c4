package announce

import (
	"context"
	"log/slog"
	"time"
)

// Worker drains the outbox: it polls for unpublished events, produces them,
// and marks them published. Delivery is at-least-once — a crash between
// produce and mark replays the event, and consumers dedupe on event ID.
type Worker struct {
	store    Store
	producer Producer
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

type WorkerOption func(*Worker)

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithPollInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		w.interval = d
	}
}

func NewWorker(store Store, producer Producer, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:    store,
		producer: producer,
		interval: time.Second,
		batch:    100,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains until the context is cancelled. Publish failures are logged and
// retried next tick; they never stop the worker.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.DrainOnce(ctx); err != nil {
				w.logger.Warn("outbox drain failed", "error", err)
			}
		}
	}
}

// DrainOnce publishes one batch of unpublished events.
func (w *Worker) DrainOnce(ctx context.Context) error {
	events, err := w.store.ListUnpublished(ctx, w.batch)
	if err != nil {
		return err
	}
	for _, event := range events {
		if err := w.producer.Produce(ctx, event.ID.String(), event.Payload); err != nil {
			return err
		}
		if err := w.store.MarkPublished(ctx, event.ID, time.Now()); err != nil {
			return err
		}
	}
	return nil
}
