// Package audit captures key gateway decisions for compliance review. Events
// are emitted from domain logic, buffered on a channel, and drained by a
// worker into a store and, when configured, a kafka topic.
package audit

import (
	"context"
	"time"
)

// Action names the audited operation.
type Action string

const (
	ActionConfigCreated        Action = "config_created"
	ActionVerificationAccepted Action = "verification_accepted"
	ActionVerificationRejected Action = "verification_rejected"
	ActionReplayDetected       Action = "replay_detected"
	ActionConfigMismatch       Action = "config_mismatch"
	ActionVerifierError        Action = "verifier_error"
)

// Event is one audited gateway decision. NullifierHash is a SHA-256 of the
// nullifier so the trail stays correlatable without storing proof-derived
// values verbatim.
type Event struct {
	Action        Action    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id,omitempty"`
	ConfigID      string    `json:"config_id,omitempty"`
	AttestationID string    `json:"attestation_id,omitempty"`
	NullifierHash string    `json:"nullifier_hash,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// Store is an append-only event sink so tests can swap implementations.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context) ([]Event, error)
}
