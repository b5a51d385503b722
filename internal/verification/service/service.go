// Package service implements the proof verification gateway: config
// resolution, verification delegation, and replay prevention.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"seatswap/internal/audit"
	"seatswap/internal/verification"
	"seatswap/internal/verification/configstore"
	"seatswap/internal/verification/metrics"
	"seatswap/internal/verification/nullifier"
	"seatswap/internal/verification/verifier"
	dErrors "seatswap/pkg/domain-errors"
	"seatswap/pkg/requestcontext"
)

var tracer = otel.Tracer("seatswap/verification")

// Metric outcome labels.
const (
	outcomeAccepted       = "accepted"
	outcomeInvalid        = "invalid"
	outcomeReplay         = "replay"
	outcomeConfigMismatch = "config_mismatch"
	outcomeError          = "error"
)

// Gateway coordinates the verification flow. It owns no state of its own;
// all shared mutable state lives behind the store and ledger contracts.
type Gateway struct {
	store    configstore.Store
	resolve  configstore.ScopeResolver
	ledger   nullifier.Ledger
	verifier verifier.Verifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    *audit.Publisher
}

// New constructs a Gateway. The audit publisher may be nil.
func New(
	store configstore.Store,
	resolve configstore.ScopeResolver,
	ledger nullifier.Ledger,
	vrf verifier.Verifier,
	logger *slog.Logger,
	m *metrics.Metrics,
	auditPub *audit.Publisher,
) *Gateway {
	return &Gateway{
		store:    store,
		resolve:  resolve,
		ledger:   ledger,
		verifier: vrf,
		logger:   logger,
		metrics:  m,
		audit:    auditPub,
	}
}

// CreateConfig validates and stores a disclosure rule set under a fresh id.
func (g *Gateway) CreateConfig(ctx context.Context, cfg verification.VerificationConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	configID := uuid.NewString()
	if err := g.store.SetConfig(ctx, configID, cfg); err != nil {
		return "", err
	}

	g.metrics.IncrementConfigsCreated()
	g.emitAudit(ctx, audit.Event{
		Action:    audit.ActionConfigCreated,
		RequestID: requestcontext.RequestID(ctx),
		ConfigID:  configID,
	})
	g.logger.InfoContext(ctx, "verification config created",
		"request_id", requestcontext.RequestID(ctx),
		"config_id", configID,
	)
	return configID, nil
}

// Verify runs the gateway algorithm. The ordering is the security-critical
// invariant: validity is established before the replay check, so replay
// protection never consumes a nullifier from an unvalidated proof, and a
// validated nullifier is consumed exactly once.
func (g *Gateway) Verify(ctx context.Context, sub verification.ProofSubmission) (verification.VerificationResult, error) {
	requestID := requestcontext.RequestID(ctx)

	if err := sub.Validate(); err != nil {
		g.logger.WarnContext(ctx, "proof submission rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		return verification.VerificationResult{}, err
	}

	subject, contextData := sub.SubjectAndContext()
	configID := g.resolve(subject, contextData)
	cfg, err := g.store.GetConfig(ctx, configID)
	if err != nil {
		g.logger.ErrorContext(ctx, "config resolution failed",
			"request_id", requestID,
			"config_id", configID,
			"error", err.Error(),
		)
		g.metrics.IncrementOutcome(outcomeError)
		return verification.VerificationResult{}, err
	}

	outcome, err := g.delegate(ctx, sub, cfg)
	if err != nil {
		var mismatch *verifier.ConfigMismatchError
		if errors.As(err, &mismatch) {
			g.metrics.IncrementOutcome(outcomeConfigMismatch)
			g.emitAudit(ctx, audit.Event{
				Action:        audit.ActionConfigMismatch,
				RequestID:     requestID,
				ConfigID:      configID,
				AttestationID: sub.AttestationID,
			})
			return verification.VerificationResult{}, err
		}
		g.logger.ErrorContext(ctx, "verifier capability failed",
			"request_id", requestID,
			"attestation_id", sub.AttestationID,
			"error", err.Error(),
		)
		g.metrics.IncrementOutcome(outcomeError)
		g.emitAudit(ctx, audit.Event{
			Action:        audit.ActionVerifierError,
			RequestID:     requestID,
			ConfigID:      configID,
			AttestationID: sub.AttestationID,
			Reason:        err.Error(),
		})
		return verification.VerificationResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "proof verification failed")
	}

	// An invalid proof carries no replay risk worth recording. Recording it
	// would let an attacker pollute the ledger with fabricated nullifiers.
	if !outcome.IsValid {
		g.metrics.IncrementOutcome(outcomeInvalid)
		g.emitAudit(ctx, audit.Event{
			Action:        audit.ActionVerificationRejected,
			RequestID:     requestID,
			ConfigID:      configID,
			AttestationID: sub.AttestationID,
			NullifierHash: audit.HashNullifier(outcome.Nullifier),
			Reason:        outcome.Details,
		})
		return verification.VerificationResult{
			Valid:     false,
			Nullifier: outcome.Nullifier,
			Disclosed: outcome.Disclosed,
			Failure:   &verification.FailureDetails{Reason: verification.ReasonInvalid, Details: outcome.Details},
		}, nil
	}

	inserted, err := g.ledger.MarkUsed(ctx, outcome.Nullifier)
	if err != nil {
		g.metrics.IncrementOutcome(outcomeError)
		return verification.VerificationResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "nullifier ledger unavailable")
	}
	if !inserted {
		g.logger.WarnContext(ctx, "replayed proof rejected",
			"request_id", requestID,
			"nullifier_hash", audit.HashNullifier(outcome.Nullifier),
		)
		g.metrics.IncrementOutcome(outcomeReplay)
		g.emitAudit(ctx, audit.Event{
			Action:        audit.ActionReplayDetected,
			RequestID:     requestID,
			ConfigID:      configID,
			AttestationID: sub.AttestationID,
			NullifierHash: audit.HashNullifier(outcome.Nullifier),
		})
		return verification.VerificationResult{
			Valid:     false,
			Nullifier: outcome.Nullifier,
			Failure:   &verification.FailureDetails{Reason: verification.ReasonReplay, Details: "proof has already been used"},
		}, nil
	}

	g.metrics.IncrementOutcome(outcomeAccepted)
	g.emitAudit(ctx, audit.Event{
		Action:        audit.ActionVerificationAccepted,
		RequestID:     requestID,
		ConfigID:      configID,
		AttestationID: sub.AttestationID,
		NullifierHash: audit.HashNullifier(outcome.Nullifier),
	})
	g.logger.InfoContext(ctx, "proof verified",
		"request_id", requestID,
		"config_id", configID,
		"nullifier_hash", audit.HashNullifier(outcome.Nullifier),
	)
	return verification.VerificationResult{
		Valid:     true,
		Nullifier: outcome.Nullifier,
		Disclosed: outcome.Disclosed,
	}, nil
}

// delegate awaits the external capability under a span so slow proving
// backends show up in traces.
func (g *Gateway) delegate(ctx context.Context, sub verification.ProofSubmission, cfg verification.VerificationConfig) (verifier.Outcome, error) {
	ctx, span := tracer.Start(ctx, "verifier.Verify",
		trace.WithAttributes(attribute.String("attestation_id", sub.AttestationID)),
	)
	defer span.End()

	start := time.Now()
	outcome, err := g.verifier.Verify(ctx, sub, cfg)
	g.metrics.ObserveVerifierLatency(time.Since(start))
	if err != nil {
		span.RecordError(err)
	}
	return outcome, err
}

func (g *Gateway) emitAudit(ctx context.Context, event audit.Event) {
	if g.audit != nil {
		event.Timestamp = requestcontext.Now(ctx)
		g.audit.Emit(ctx, event)
	}
}
