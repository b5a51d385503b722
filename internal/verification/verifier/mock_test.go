package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatswap/internal/verification"
)

func mockSubmission(t *testing.T, doc map[string]any) verification.ProofSubmission {
	t.Helper()
	signals, err := json.Marshal(doc)
	require.NoError(t, err)
	return verification.ProofSubmission{
		AttestationID:   AttestationPassport,
		Proof:           json.RawMessage(`{"pi_a":[]}`),
		PublicSignals:   signals,
		UserContextData: "ctx",
	}
}

func TestMockVerifierAcceptsSatisfyingProof(t *testing.T) {
	v := &MockVerifier{}
	sub := mockSubmission(t, map[string]any{
		"valid":       true,
		"nullifier":   "N1",
		"age":         25,
		"nationality": "FRA",
	})
	cfg := verification.VerificationConfig{MinimumAge: 18, ExcludedCountries: []string{"PRK"}}

	out, err := v.Verify(context.Background(), sub, cfg)
	require.NoError(t, err)
	assert.True(t, out.IsValid)
	assert.Equal(t, "N1", out.Nullifier)
	assert.Equal(t, "FRA", out.Disclosed["nationality"])
	assert.Equal(t, "25", out.Disclosed["age"])
}

func TestMockVerifierRejections(t *testing.T) {
	v := &MockVerifier{}
	cfg := verification.VerificationConfig{MinimumAge: 18, ExcludedCountries: []string{"PRK"}, OFACCheck: true}

	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"invalid proof", map[string]any{"valid": false, "nullifier": "N2", "age": 25, "nationality": "FRA"}},
		{"underage", map[string]any{"valid": true, "nullifier": "N3", "age": 16, "nationality": "FRA"}},
		{"excluded country", map[string]any{"valid": true, "nullifier": "N4", "age": 25, "nationality": "PRK"}},
		{"ofac match", map[string]any{"valid": true, "nullifier": "N5", "age": 25, "nationality": "FRA", "ofacMatch": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := v.Verify(context.Background(), mockSubmission(t, tt.doc), cfg)
			require.NoError(t, err)
			assert.False(t, out.IsValid)
			assert.NotEmpty(t, out.Nullifier, "nullifier is present regardless of validity")
			assert.NotEmpty(t, out.Details)
		})
	}
}

func TestMockVerifierConfigMismatch(t *testing.T) {
	v := &MockVerifier{}
	sub := mockSubmission(t, map[string]any{
		"valid":     true,
		"nullifier": "N6",
		"age":       25,
		"attestedRules": map[string]any{
			"minimumAge": 21,
		},
	})
	cfg := verification.VerificationConfig{MinimumAge: 18}

	_, err := v.Verify(context.Background(), sub, cfg)
	var mismatch *ConfigMismatchError
	require.True(t, errors.As(err, &mismatch))
	require.Len(t, mismatch.Issues, 1)
	assert.Equal(t, "minimumAge", mismatch.Issues[0].Field)
	assert.Equal(t, "18", mismatch.Issues[0].Expected)
	assert.Equal(t, "21", mismatch.Issues[0].Attested)
}

func TestMockVerifierErrors(t *testing.T) {
	v := &MockVerifier{}
	cfg := verification.VerificationConfig{}

	t.Run("unsupported attestation", func(t *testing.T) {
		sub := mockSubmission(t, map[string]any{"valid": true, "nullifier": "N7"})
		sub.AttestationID = "drivers_license"
		_, err := v.Verify(context.Background(), sub, cfg)
		assert.Error(t, err)
	})

	t.Run("malformed public signals", func(t *testing.T) {
		sub := mockSubmission(t, map[string]any{"valid": true, "nullifier": "N8"})
		sub.PublicSignals = json.RawMessage(`{not json`)
		_, err := v.Verify(context.Background(), sub, cfg)
		assert.Error(t, err)
	})

	t.Run("missing nullifier", func(t *testing.T) {
		sub := mockSubmission(t, map[string]any{"valid": true})
		_, err := v.Verify(context.Background(), sub, cfg)
		assert.Error(t, err)
	})
}
