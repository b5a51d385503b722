// Package verifier defines the port to the external proof-verification
// capability. The capability performs the cryptographic check and the
// disclosure-rule matching; the gateway consumes it as a black box.
package verifier

import (
	"context"
	"strings"

	"seatswap/internal/verification"
)

// Outcome is what the capability reports for one proof.
type Outcome struct {
	IsValid   bool
	Nullifier string
	Disclosed map[string]string
	// Details explains IsValid=false in capability terms.
	Details string
}

// Verifier checks a proof against a resolved rule set.
//
// Implementations return *ConfigMismatchError when the proof's disclosed rule
// set does not match cfg, and plain errors for transport or capability
// failures (the gateway classifies those as verification errors).
type Verifier interface {
	Verify(ctx context.Context, sub verification.ProofSubmission, cfg verification.VerificationConfig) (Outcome, error)
}

// Issue is one mismatch between a proof's attested rules and the resolved
// config.
type Issue struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Attested string `json:"attested"`
}

// ConfigMismatchError signals that the proof was generated under different
// disclosure rules than the ones governing this verification.
type ConfigMismatchError struct {
	Issues []Issue
}

func (e *ConfigMismatchError) Error() string {
	var b strings.Builder
	b.WriteString("configuration mismatch")
	for _, issue := range e.Issues {
		b.WriteString("; ")
		b.WriteString(issue.Field)
		b.WriteString(": expected ")
		b.WriteString(issue.Expected)
		b.WriteString(", attested ")
		b.WriteString(issue.Attested)
	}
	return b.String()
}
