// Package configstore holds named disclosure rule sets and resolves which
// rule set governs a verification subject.
package configstore

import (
	"context"

	"seatswap/internal/verification"
)

// Store persists verification configs. Implementations must treat a second
// SetConfig for the same id as an overwrite; callers are expected to use
// fresh ids so in-flight sessions never see their rules change.
type Store interface {
	SetConfig(ctx context.Context, id string, cfg verification.VerificationConfig) error
	// GetConfig returns dErrors.CodeNotFound when the id is unknown.
	GetConfig(ctx context.Context, id string) (verification.VerificationConfig, error)
}

// ScopeResolver maps a verification subject and its context data to the
// config id that governs it. It must be pure.
type ScopeResolver func(subjectID string, contextData []byte) string

// GlobalScope returns a resolver that maps every subject to one config id,
// the "one global rule set" policy.
func GlobalScope(configID string) ScopeResolver {
	return func(string, []byte) string {
		return configID
	}
}

// SubjectScope returns a resolver where the subject identifier is the config
// id, the "per-session generated rule set" policy: whoever starts a session
// stores a config under the subject's id before the proof arrives.
func SubjectScope() ScopeResolver {
	return func(subjectID string, _ []byte) string {
		return subjectID
	}
}
