package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"seatswap/internal/verification"
)

// Attestation types the mock understands.
const (
	AttestationPassport = "passport"
	AttestationEUIDCard = "eu_id_card"
)

// MockVerifier is a deterministic stand-in for the real proving backend,
// usable in development and tests. It reads the submission's publicSignals as
// a mock disclosure document and evaluates the resolved rules against it. A
// configurable latency mimics the real network/compute-bound call.
type MockVerifier struct {
	Latency time.Duration
}

var _ Verifier = (*MockVerifier)(nil)

// mockDocument is the publicSignals payload the mock accepts. AttestedRules
// mirrors the rule set the proof was generated under; when present and
// different from the resolved config the mock raises a config mismatch, the
// way the real capability does.
type mockDocument struct {
	Valid         bool                             `json:"valid"`
	Nullifier     string                           `json:"nullifier"`
	Age           int                              `json:"age"`
	Nationality   string                           `json:"nationality"`
	OFACMatch     bool                             `json:"ofacMatch"`
	Attributes    map[string]string                `json:"attributes"`
	AttestedRules *verification.VerificationConfig `json:"attestedRules"`
}

// Verify evaluates the mock document against cfg.
func (v *MockVerifier) Verify(ctx context.Context, sub verification.ProofSubmission, cfg verification.VerificationConfig) (Outcome, error) {
	if v.Latency > 0 {
		select {
		case <-time.After(v.Latency):
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		}
	}

	if sub.AttestationID != AttestationPassport && sub.AttestationID != AttestationEUIDCard {
		return Outcome{}, fmt.Errorf("unsupported attestation type %q", sub.AttestationID)
	}

	var doc mockDocument
	if err := json.Unmarshal(sub.PublicSignals, &doc); err != nil {
		return Outcome{}, fmt.Errorf("malformed public signals: %w", err)
	}
	if doc.Nullifier == "" {
		return Outcome{}, fmt.Errorf("public signals carry no nullifier")
	}

	if doc.AttestedRules != nil {
		if issues := diffRules(cfg, *doc.AttestedRules); len(issues) > 0 {
			return Outcome{}, &ConfigMismatchError{Issues: issues}
		}
	}

	outcome := Outcome{
		Nullifier: doc.Nullifier,
		Disclosed: disclosedAttributes(doc),
	}

	switch {
	case !doc.Valid:
		outcome.Details = "proof rejected by verifier"
	case cfg.MinimumAge > 0 && doc.Age < cfg.MinimumAge:
		outcome.Details = "minimum age requirement not met"
	case countryExcluded(cfg.ExcludedCountries, doc.Nationality):
		outcome.Details = "nationality is excluded"
	case cfg.OFACCheck && doc.OFACMatch:
		outcome.Details = "subject matched a sanctions list"
	default:
		outcome.IsValid = true
	}

	return outcome, nil
}

func disclosedAttributes(doc mockDocument) map[string]string {
	attrs := make(map[string]string, len(doc.Attributes)+2)
	for k, v := range doc.Attributes {
		attrs[k] = v
	}
	if doc.Nationality != "" {
		attrs["nationality"] = doc.Nationality
	}
	if doc.Age > 0 {
		attrs["age"] = strconv.Itoa(doc.Age)
	}
	return attrs
}

func countryExcluded(excluded []string, nationality string) bool {
	for _, c := range excluded {
		if strings.EqualFold(c, nationality) {
			return true
		}
	}
	return false
}

func diffRules(resolved, attested verification.VerificationConfig) []Issue {
	var issues []Issue
	if resolved.MinimumAge != attested.MinimumAge {
		issues = append(issues, Issue{
			Field:    "minimumAge",
			Expected: strconv.Itoa(resolved.MinimumAge),
			Attested: strconv.Itoa(attested.MinimumAge),
		})
	}
	if !sameCountrySet(resolved.ExcludedCountries, attested.ExcludedCountries) {
		issues = append(issues, Issue{
			Field:    "excludedCountries",
			Expected: strings.Join(resolved.ExcludedCountries, ","),
			Attested: strings.Join(attested.ExcludedCountries, ","),
		})
	}
	if resolved.OFACCheck != attested.OFACCheck {
		issues = append(issues, Issue{
			Field:    "ofac",
			Expected: strconv.FormatBool(resolved.OFACCheck),
			Attested: strconv.FormatBool(attested.OFACCheck),
		})
	}
	return issues
}

func sameCountrySet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if !strings.EqualFold(as[i], bs[i]) {
			return false
		}
	}
	return true
}
