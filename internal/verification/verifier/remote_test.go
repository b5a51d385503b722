package verifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seatswap/internal/verification"
)

func remoteSubmission() verification.ProofSubmission {
	return verification.ProofSubmission{
		AttestationID:   AttestationPassport,
		Proof:           json.RawMessage(`{}`),
		PublicSignals:   json.RawMessage(`{}`),
		UserContextData: "subject-1",
	}
}

func TestRemoteVerifier(t *testing.T) {
	t.Run("maps a backend response to an outcome", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req remoteRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-scope", req.Scope)
			assert.Equal(t, 18, req.Config.MinimumAge)

			json.NewEncoder(w).Encode(remoteResponse{
				IsValid:   true,
				Nullifier: "nf-remote",
				Disclosed: map[string]string{"age": "25"},
			})
		}))
		defer server.Close()

		v := NewRemoteVerifier(server.URL, "test-scope")
		outcome, err := v.Verify(context.Background(), remoteSubmission(), verification.VerificationConfig{MinimumAge: 18})

		require.NoError(t, err)
		assert.True(t, outcome.IsValid)
		assert.Equal(t, "nf-remote", outcome.Nullifier)
		assert.Equal(t, "25", outcome.Disclosed["age"])
	})

	t.Run("maps a mismatch signal to ConfigMismatchError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(remoteResponse{
				ConfigMismatch: true,
				Issues:         []Issue{{Field: "minimumAge", Expected: "18", Attested: "21"}},
			})
		}))
		defer server.Close()

		v := NewRemoteVerifier(server.URL, "test-scope")
		_, err := v.Verify(context.Background(), remoteSubmission(), verification.VerificationConfig{MinimumAge: 18})

		var mismatch *ConfigMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Len(t, mismatch.Issues, 1)
		assert.Equal(t, "minimumAge", mismatch.Issues[0].Field)
	})

	t.Run("server errors count against the circuit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		v := NewRemoteVerifier(server.URL, "test-scope")
		for i := 0; i < 5; i++ {
			_, err := v.Verify(context.Background(), remoteSubmission(), verification.VerificationConfig{})
			require.Error(t, err)
		}
		assert.True(t, v.breaker.IsOpen())
	})

	t.Run("recovered backend closes the circuit again", func(t *testing.T) {
		healthy := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if !healthy {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(remoteResponse{IsValid: true, Nullifier: "nf-1"})
		}))
		defer server.Close()

		v := NewRemoteVerifier(server.URL, "test-scope")
		for i := 0; i < 5; i++ {
			_, _ = v.Verify(context.Background(), remoteSubmission(), verification.VerificationConfig{})
		}
		require.True(t, v.breaker.IsOpen())

		healthy = true
		// Probes are let through serially until the success threshold closes
		// the circuit again.
		for i := 0; i < 2; i++ {
			_, err := v.Verify(context.Background(), remoteSubmission(), verification.VerificationConfig{})
			require.NoError(t, err)
		}
		assert.False(t, v.breaker.IsOpen())
	})
}
