// Package handler exposes the verification gateway over HTTP. The response
// envelope on this surface is the one proof-scanning clients expect
// ({status, result, message}); it is fixed and must not drift.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"seatswap/internal/verification"
	"seatswap/internal/verification/verifier"
	dErrors "seatswap/pkg/domain-errors"
	"seatswap/pkg/requestcontext"
)

// Client-facing messages. Scanning clients match on these strings.
const (
	msgVerificationFailed = "Verification failed"
	msgProofReplayed      = "Proof has already been used"
	msgConfigMismatch     = "Configuration mismatch"
	msgMissingFields      = "Missing required fields"
	msgInternal           = "Internal server error"
)

// Service defines the interface for gateway operations.
type Service interface {
	Verify(ctx context.Context, sub verification.ProofSubmission) (verification.VerificationResult, error)
	CreateConfig(ctx context.Context, cfg verification.VerificationConfig) (string, error)
}

// Handler handles the public verification endpoints.
type Handler struct {
	logger  *slog.Logger
	gateway Service
}

// New creates a new verification Handler.
func New(gateway Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		gateway: gateway,
	}
}

// Register registers the verification routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusMethodNotAllowed, errorEnvelope{
			Status:  "error",
			Message: "Method not allowed",
		})
	})
	r.Post("/verify", h.handleVerify)
	r.Post("/create-verification", h.handleCreateVerification)
}

type successEnvelope struct {
	Status            string            `json:"status"`
	Result            bool              `json:"result"`
	CredentialSubject map[string]string `json:"credentialSubject"`
}

type errorEnvelope struct {
	Status  string           `json:"status"`
	Result  *bool            `json:"result,omitempty"`
	Message string           `json:"message"`
	Issues  []verifier.Issue `json:"issues,omitempty"`
}

func failure(message string) errorEnvelope {
	result := false
	return errorEnvelope{Status: "error", Result: &result, Message: message}
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var sub verification.ProofSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.logger.WarnContext(ctx, "malformed verify request",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeEnvelope(w, http.StatusBadRequest, failure(msgMissingFields))
		return
	}

	result, err := h.gateway.Verify(ctx, sub)
	if err != nil {
		h.writeVerifyError(ctx, w, err)
		return
	}

	if !result.Valid {
		message := msgVerificationFailed
		if result.Failure != nil && result.Failure.Reason == verification.ReasonReplay {
			message = msgProofReplayed
		}
		writeEnvelope(w, http.StatusBadRequest, failure(message))
		return
	}

	subject := result.Disclosed
	if subject == nil {
		subject = map[string]string{}
	}
	writeEnvelope(w, http.StatusOK, successEnvelope{
		Status:            "success",
		Result:            true,
		CredentialSubject: subject,
	})
}

func (h *Handler) writeVerifyError(ctx context.Context, w http.ResponseWriter, err error) {
	requestID := requestcontext.RequestID(ctx)

	var mismatch *verifier.ConfigMismatchError
	switch {
	case errors.As(err, &mismatch):
		envelope := failure(msgConfigMismatch)
		envelope.Issues = mismatch.Issues
		writeEnvelope(w, http.StatusBadRequest, envelope)
	case dErrors.HasCode(err, dErrors.CodeInvalidInput):
		writeEnvelope(w, http.StatusBadRequest, failure(msgMissingFields))
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		// No rule set governs this subject; to the client the proof simply
		// does not verify.
		writeEnvelope(w, http.StatusBadRequest, failure(msgVerificationFailed))
	default:
		h.logger.ErrorContext(ctx, "verification request failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeEnvelope(w, http.StatusInternalServerError, errorEnvelope{
			Status:  "error",
			Message: msgInternal,
		})
	}
}

type createVerificationRequest struct {
	Disclosures *verification.VerificationConfig `json:"disclosures"`
}

type createVerificationResponse struct {
	ConfigID string `json:"configId"`
}

func (h *Handler) handleCreateVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req createVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Disclosures == nil {
		writeEnvelope(w, http.StatusBadRequest, errorEnvelope{
			Status:  "error",
			Message: "Disclosures are required",
		})
		return
	}

	configID, err := h.gateway.CreateConfig(ctx, *req.Disclosures)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			writeEnvelope(w, http.StatusBadRequest, errorEnvelope{
				Status:  "error",
				Message: err.Error(),
			})
			return
		}
		h.logger.ErrorContext(ctx, "failed to create verification config",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeEnvelope(w, http.StatusInternalServerError, errorEnvelope{
			Status:  "error",
			Message: msgInternal,
		})
		return
	}

	writeEnvelope(w, http.StatusOK, createVerificationResponse{ConfigID: configID})
}

func writeEnvelope(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
