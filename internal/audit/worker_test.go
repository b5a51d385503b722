package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerAppendsToAllSinks(t *testing.T) {
	pub := NewPublisher(16, discardLogger())
	sinkA := NewInMemoryStore()
	sinkB := NewInMemoryStore()
	worker := NewWorker(pub.Inbox(), discardLogger(), sinkA, sinkB)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	pub.Emit(ctx, Event{Action: ActionVerificationAccepted, NullifierHash: HashNullifier("N1")})
	pub.Emit(ctx, Event{Action: ActionReplayDetected, NullifierHash: HashNullifier("N1")})

	require.Eventually(t, func() bool {
		events, err := sinkA.List(context.Background())
		return err == nil && len(events) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	eventsB, err := sinkB.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, eventsB, 2)
	assert.Equal(t, ActionVerificationAccepted, eventsB[0].Action)
	assert.False(t, eventsB[0].Timestamp.IsZero(), "publisher stamps time")
}

func TestPublisherDropsWhenFull(t *testing.T) {
	pub := NewPublisher(1, discardLogger())

	// No worker running: second emit hits a full inbox and must not block.
	ctx := context.Background()
	pub.Emit(ctx, Event{Action: ActionConfigCreated})

	finished := make(chan struct{})
	go func() {
		pub.Emit(ctx, Event{Action: ActionConfigCreated})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full inbox")
	}
}

func TestHashNullifierIsStable(t *testing.T) {
	assert.Equal(t, HashNullifier("N1"), HashNullifier("N1"))
	assert.NotEqual(t, HashNullifier("N1"), HashNullifier("N2"))
	assert.Len(t, HashNullifier("N1"), 64)
}
