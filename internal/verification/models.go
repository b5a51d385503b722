// Package verification holds the domain model shared by the proof
// verification gateway: disclosure rule sets, proof submissions, and
// verification results.
package verification

import (
	"encoding/json"
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "seatswap/pkg/domain-errors"
)

// VerificationConfig is a named set of disclosure rules a proof must satisfy.
// Configs are immutable once stored; callers wanting different rules must
// create a new config under a fresh id.
type VerificationConfig struct {
	ConfigID          string   `json:"configId,omitempty"`
	MinimumAge        int      `json:"minimumAge"`
	ExcludedCountries []string `json:"excludedCountries,omitempty"`
	OFACCheck         bool     `json:"ofac"`
}

// Validate enforces rule-set sanity before a config is accepted.
func (c VerificationConfig) Validate() error {
	if c.MinimumAge < 0 {
		return dErrors.New(dErrors.CodeValidation, "minimumAge must be >= 0")
	}
	for _, country := range c.ExcludedCountries {
		if !govalidator.IsISO3166Alpha3(country) {
			return dErrors.New(dErrors.CodeValidation, "excludedCountries must be ISO 3166 alpha-3 codes, got "+country)
		}
	}
	return nil
}

// ProofSubmission is the gateway's input. Proof and PublicSignals are opaque
// verifier-specific payloads and are never interpreted here.
type ProofSubmission struct {
	AttestationID   string          `json:"attestationId"`
	Proof           json.RawMessage `json:"proof"`
	PublicSignals   json.RawMessage `json:"publicSignals"`
	UserContextData string          `json:"userContextData"`
}

// Validate checks that all required fields are present.
func (s ProofSubmission) Validate() error {
	switch {
	case s.AttestationID == "":
		return dErrors.New(dErrors.CodeInvalidInput, "attestationId is required")
	case len(s.Proof) == 0 || string(s.Proof) == "null":
		return dErrors.New(dErrors.CodeInvalidInput, "proof is required")
	case len(s.PublicSignals) == 0 || string(s.PublicSignals) == "null":
		return dErrors.New(dErrors.CodeInvalidInput, "publicSignals is required")
	case s.UserContextData == "":
		return dErrors.New(dErrors.CodeInvalidInput, "userContextData is required")
	}
	return nil
}

// SubjectAndContext splits UserContextData into the verification subject and
// its optional context binding. The wire form is "subject" or
// "subject:context", where context is the opaque bytes the proof scope was
// bound to (a ticket record hash, for instance).
func (s ProofSubmission) SubjectAndContext() (string, []byte) {
	subject, contextData, found := strings.Cut(s.UserContextData, ":")
	if !found || contextData == "" {
		return subject, nil
	}
	return subject, []byte(contextData)
}

// Failure reasons carried in VerificationResult.
const (
	// ReasonInvalid marks proofs the external capability rejected.
	ReasonInvalid = "invalid"
	// ReasonReplay marks proofs whose nullifier was already consumed.
	ReasonReplay = "replay"
)

// FailureDetails explains a Valid=false result.
type FailureDetails struct {
	Reason  string `json:"reason"`
	Details string `json:"details,omitempty"`
}

// VerificationResult is the gateway's output. Nullifier is present regardless
// of validity. Once a nullifier has produced a Valid=true result it can never
// produce another one.
type VerificationResult struct {
	Valid     bool              `json:"valid"`
	Nullifier string            `json:"nullifier"`
	Disclosed map[string]string `json:"disclosedAttributes,omitempty"`
	Failure   *FailureDetails   `json:"failureDetails,omitempty"`
}
