package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"seatswap/internal/verification"
	"seatswap/pkg/platform/circuit"
)

// RemoteVerifier delegates to a proving backend over HTTP. The backend owns
// the cryptography; this adapter only moves bytes and classifies responses.
// A circuit breaker sheds load when the backend is down so requests fail
// fast instead of stacking up on a 30s timeout.
type RemoteVerifier struct {
	endpoint string
	scope    string
	client   *http.Client
	breaker  *circuit.Breaker
	probe    sync.Mutex
}

var _ Verifier = (*RemoteVerifier)(nil)

// NewRemoteVerifier constructs an adapter for the backend at endpoint.
func NewRemoteVerifier(endpoint, scope string) *RemoteVerifier {
	return &RemoteVerifier{
		endpoint: endpoint,
		scope:    scope,
		client:   &http.Client{Timeout: 30 * time.Second},
		breaker:  circuit.New("verifier-backend", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}
}

type remoteRequest struct {
	Scope           string                          `json:"scope"`
	AttestationID   string                          `json:"attestationId"`
	Proof           json.RawMessage                 `json:"proof"`
	PublicSignals   json.RawMessage                 `json:"publicSignals"`
	UserContextData string                          `json:"userContextData"`
	Config          verification.VerificationConfig `json:"config"`
}

type remoteResponse struct {
	IsValid        bool              `json:"isValid"`
	Nullifier      string            `json:"nullifier"`
	Disclosed      map[string]string `json:"disclosedAttributes"`
	Details        string            `json:"details"`
	ConfigMismatch bool              `json:"configMismatch"`
	Issues         []Issue           `json:"issues"`
}

// Verify posts the proof materials and resolved config to the backend. With
// the circuit open, only one probe request at a time reaches the backend;
// everything else fails fast.
func (v *RemoteVerifier) Verify(ctx context.Context, sub verification.ProofSubmission, cfg verification.VerificationConfig) (Outcome, error) {
	if v.breaker.IsOpen() {
		if !v.probe.TryLock() {
			return Outcome{}, fmt.Errorf("verifier backend circuit open")
		}
		defer v.probe.Unlock()
	}

	outcome, err := v.call(ctx, sub, cfg)
	if err != nil {
		var mismatch *ConfigMismatchError
		// A mismatch is a healthy backend answering; only transport and
		// server failures count against the circuit.
		if !errors.As(err, &mismatch) {
			v.breaker.RecordFailure()
		}
		return outcome, err
	}
	v.breaker.RecordSuccess()
	return outcome, nil
}

func (v *RemoteVerifier) call(ctx context.Context, sub verification.ProofSubmission, cfg verification.VerificationConfig) (Outcome, error) {
	payload, err := json.Marshal(remoteRequest{
		Scope:           v.scope,
		AttestationID:   sub.AttestationID,
		Proof:           sub.Proof,
		PublicSignals:   sub.PublicSignals,
		UserContextData: sub.UserContextData,
		Config:          cfg,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Outcome{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("call verifier backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Outcome{}, fmt.Errorf("verifier backend returned status %d", resp.StatusCode)
	}

	var body remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Outcome{}, fmt.Errorf("decode verifier response: %w", err)
	}

	if body.ConfigMismatch {
		return Outcome{}, &ConfigMismatchError{Issues: body.Issues}
	}

	return Outcome{
		IsValid:   body.IsValid,
		Nullifier: body.Nullifier,
		Disclosed: body.Disclosed,
		Details:   body.Details,
	}, nil
}
