package audit

import (
	"context"
	"log/slog"
)

// Worker drains the publisher inbox into one or more sinks. A sink failure is
// logged and skipped; the audit trail is best-effort and must never take the
// gateway down.
type Worker struct {
	inbox  <-chan Event
	sinks  []Store
	logger *slog.Logger
}

// NewWorker wires the inbox to its sinks.
func NewWorker(inbox <-chan Event, logger *slog.Logger, sinks ...Store) *Worker {
	return &Worker{inbox: inbox, sinks: sinks, logger: logger}
}

// Run processes events until ctx is cancelled, then drains what is buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.append(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event Event) {
	for _, sink := range w.sinks {
		if err := sink.Append(ctx, event); err != nil {
			w.logger.Error("audit sink append failed",
				"action", string(event.Action),
				"error", err.Error(),
			)
		}
	}
}
