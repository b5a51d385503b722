//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"seatswap/pkg/testutil/containers"
)

func TestKafkaSinkProducesEvents(t *testing.T) {
	rp := containers.NewRedpandaContainer(t)
	ctx := context.Background()

	sink, err := NewKafkaSink(ctx, rp.Brokers, "seatswap.audit.test")
	require.NoError(t, err)
	t.Cleanup(sink.Close)

	event := Event{
		Action:        ActionVerificationAccepted,
		Timestamp:     time.Now().UTC(),
		NullifierHash: HashNullifier("N-kafka"),
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics("seatswap.audit.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)

	var got Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, ActionVerificationAccepted, got.Action)
	require.Equal(t, event.NullifierHash, got.NullifierHash)
}
