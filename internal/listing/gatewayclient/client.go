// Package gatewayclient is the HTTP client listing sessions use to talk to
// the verification gateway: registering disclosure rules and submitting
// scanned proofs.
package gatewayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"seatswap/internal/verification"
	"seatswap/internal/verification/verifier"
	dErrors "seatswap/pkg/domain-errors"
)

// Client talks to one gateway instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a gateway client.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type createRequest struct {
	Disclosures verification.VerificationConfig `json:"disclosures"`
}

type createResponse struct {
	ConfigID string `json:"configId"`
}

// CreateVerification registers a disclosure rule set and returns its id.
func (c *Client) CreateVerification(ctx context.Context, cfg verification.VerificationConfig) (string, error) {
	var resp createResponse
	if err := c.post(ctx, "/create-verification", createRequest{Disclosures: cfg}, http.StatusOK, &resp); err != nil {
		return "", err
	}
	if resp.ConfigID == "" {
		return "", dErrors.New(dErrors.CodeInternal, "gateway returned no config id")
	}
	return resp.ConfigID, nil
}

type verifyEnvelope struct {
	Status            string            `json:"status"`
	Result            bool              `json:"result"`
	Message           string            `json:"message"`
	Issues            []verifier.Issue  `json:"issues"`
	CredentialSubject map[string]string `json:"credentialSubject"`
}

// ScanResult is the client-side view of one proof submission.
type ScanResult struct {
	Valid   bool
	Details string
	// Disclosed carries the attributes the gateway released on success.
	Disclosed map[string]string
}

// Verify submits a scanned proof. A rejected proof is a non-error ScanResult;
// errors mean the gateway could not be reached or answered out of contract.
func (c *Client) Verify(ctx context.Context, sub verification.ProofSubmission) (ScanResult, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return ScanResult{}, fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(payload))
	if err != nil {
		return ScanResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return ScanResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "gateway unreachable")
	}
	defer resp.Body.Close()

	var envelope verifyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return ScanResult{}, fmt.Errorf("decode gateway response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return ScanResult{Valid: true, Disclosed: envelope.CredentialSubject}, nil
	case http.StatusBadRequest:
		return ScanResult{Valid: false, Details: envelope.Message}, nil
	default:
		return ScanResult{}, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("gateway answered %d: %s", resp.StatusCode, envelope.Message))
	}
}

func (c *Client) post(ctx context.Context, path string, body any, wantStatus int, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var envelope verifyEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("gateway answered %d: %s", resp.StatusCode, envelope.Message))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
