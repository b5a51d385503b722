package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// HashNullifier derives the audit-safe form of a nullifier.
func HashNullifier(nullifier string) string {
	sum := sha256.Sum256([]byte(nullifier))
	return hex.EncodeToString(sum[:])
}

// Publisher is the non-blocking entry point domain code emits into. Events
// flow through a buffered inbox; when the buffer is full the event is dropped
// and counted rather than stalling a verification request.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewPublisher creates a publisher with the given buffer size.
func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit enqueues an event, stamping the time when unset. It never blocks.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", string(event.Action),
		)
	}
}

// Inbox exposes the channel for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// KafkaSink forwards audit events to a kafka topic for downstream compliance
// consumers.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects to the brokers and ensures the audit topic exists.
func NewKafkaSink(ctx context.Context, brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil && resp.Err == nil {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	// resp.Err "already exists" is fine.

	return &KafkaSink{client: client, topic: topic}, nil
}

// Append implements Store by producing the event as JSON.
func (s *KafkaSink) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{Topic: s.topic, Value: payload, Key: []byte(event.Action)}
	return s.client.ProduceSync(ctx, record).FirstErr()
}

// List is not supported on the kafka sink; consumers read the topic.
func (s *KafkaSink) List(context.Context) ([]Event, error) {
	return nil, nil
}

// Close flushes and closes the kafka client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
