package listing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"seatswap/internal/listing/wallet"
	"seatswap/internal/verification"
	dErrors "seatswap/pkg/domain-errors"
)

// ConfigRegistrar registers the disclosure rules a session's proof must
// satisfy before the scan starts. Implemented by the gateway client.
type ConfigRegistrar interface {
	CreateVerification(ctx context.Context, cfg verification.VerificationConfig) (string, error)
}

// Options tunes a Controller.
type Options struct {
	// AirlineFee is the fixed change fee passed through to the buyer.
	AirlineFee float64
	// PlatformFeeRate is the platform's cut as a fraction of the payout.
	PlatformFeeRate float64
	// ObservationDelay holds the session in ProofReceived so the seller sees
	// the scan result before pricing starts.
	ObservationDelay time.Duration
	// MinimumAge, ExcludedCountries and OFACCheck are the disclosure rules
	// registered for the session.
	MinimumAge        int
	ExcludedCountries []string
	OFACCheck         bool
}

// Controller runs one seller's listing session as a state machine:
//
//	Idle → AwaitingProof → ProofReceived → PriceInput → SummaryConfirm → Minting → Complete
//
// with Failed terminal on verification errors. Cancel returns the session to
// Idle so the workflow can restart. All methods are safe for concurrent use;
// transitions are serialized under one mutex.
type Controller struct {
	registrar ConfigRegistrar
	wallet    wallet.Wallet
	logger    *slog.Logger
	opts      Options

	mu         sync.Mutex
	state      State
	ticket     Ticket
	session    VerificationSession
	proofValid bool
	fees       FeeBreakdown
	txHash     string
	failReason string
	observe    *time.Timer

	updates chan Update
}

// NewController creates a session controller in Idle. The registrar may be
// nil when rules are provisioned out of band.
func NewController(registrar ConfigRegistrar, w wallet.Wallet, logger *slog.Logger, opts Options) *Controller {
	if opts.ObservationDelay <= 0 {
		opts.ObservationDelay = 2 * time.Second
	}
	return &Controller{
		registrar: registrar,
		wallet:    w,
		logger:    logger,
		opts:      opts,
		state:     StateIdle,
		updates:   make(chan Update, 16),
	}
}

// Updates streams state transitions. The channel is buffered; a slow consumer
// loses intermediate updates rather than blocking the session.
func (c *Controller) Updates() <-chan Update {
	return c.updates
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fees returns the breakdown computed at SetPrice.
func (c *Controller) Fees() FeeBreakdown {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fees
}

// TxHash returns the mint transaction hash once Complete.
func (c *Controller) TxHash() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.txHash
}

// FailReason returns why the session failed, empty otherwise.
func (c *Controller) FailReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failReason
}

// ConfigID returns the verification config registered for this session.
func (c *Controller) ConfigID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.ConfigID
}

// Session returns the verification session binding the registered rules to
// this ticket. Zero until Start succeeds.
func (c *Controller) Session() VerificationSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Start validates the ticket, registers the session's disclosure rules, binds
// the session to the ticket's record hash, and moves Idle → AwaitingProof.
func (c *Controller) Start(ctx context.Context, t Ticket) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return c.wrongState(StateIdle)
	}
	if err := t.Validate(); err != nil {
		return err
	}

	session := VerificationSession{ContextData: []byte(RecordID(t))}
	if c.registrar != nil {
		configID, err := c.registrar.CreateVerification(ctx, verification.VerificationConfig{
			MinimumAge:        c.opts.MinimumAge,
			ExcludedCountries: c.opts.ExcludedCountries,
			OFACCheck:         c.opts.OFACCheck,
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "register verification rules")
		}
		session.ConfigID = configID
		session.SubjectID = configID
	}

	c.ticket = t
	c.session = session
	c.transition(StateAwaitingProof, "")
	return nil
}

// OnProofEvent consumes the single-shot outcome of the proof scan. A valid
// proof moves to ProofReceived and, after the observation delay, to
// PriceInput. Anything else fails the session.
func (c *Controller) OnProofEvent(ev ProofEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaitingProof {
		return c.wrongState(StateAwaitingProof)
	}

	if !ev.Valid {
		reason := ev.Details
		if reason == "" {
			reason = "identity verification failed"
		}
		c.fail(reason)
		return nil
	}

	c.proofValid = true
	c.transition(StateProofReceived, "")
	c.observe = time.AfterFunc(c.opts.ObservationDelay, c.observationElapsed)
	return nil
}

func (c *Controller) observationElapsed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Cancel may have raced the timer.
	if c.state != StateProofReceived {
		return
	}
	c.transition(StatePriceInput, "")
}

// SetPrice computes the fee breakdown for the seller's asking payout and
// moves PriceInput → SummaryConfirm.
func (c *Controller) SetPrice(payout float64) (FeeBreakdown, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePriceInput {
		return FeeBreakdown{}, c.wrongState(StatePriceInput)
	}

	fees, err := ComputeFees(payout, c.opts.AirlineFee, c.opts.PlatformFeeRate)
	if err != nil {
		return FeeBreakdown{}, err
	}

	c.fees = fees
	c.transition(StateSummaryConfirm, "")
	return fees, nil
}

// Confirm moves SummaryConfirm → Minting and submits the mint transaction.
// It blocks until the transaction confirms. A wallet failure returns the
// session to SummaryConfirm so the seller can retry.
func (c *Controller) Confirm(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != StateSummaryConfirm {
		defer c.mu.Unlock()
		return "", c.wrongState(StateSummaryConfirm)
	}
	// Minting is unreachable without a validated proof, regardless of how the
	// session got here.
	if !c.proofValid {
		defer c.mu.Unlock()
		return "", dErrors.New(dErrors.CodeInvariantViolation, "cannot mint without a verified identity proof")
	}

	req := wallet.MintRequest{
		RecordID:      RecordID(c.ticket),
		Payout:        c.fees.Payout,
		AirlineFee:    c.fees.AirlineFee,
		PlatformFee:   c.fees.PlatformFee,
		TotalPrice:    c.fees.TotalPrice,
		PNR:           c.ticket.PNR,
		PassengerName: c.ticket.PassengerName,
		WalletAddress: c.ticket.SellerWallet,
	}
	c.transition(StateMinting, "")
	c.mu.Unlock()

	txHash, err := c.wallet.MintTicket(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateMinting {
		// Cancelled while the transaction was in flight.
		return "", dErrors.New(dErrors.CodeConflict, "session no longer minting")
	}

	if err != nil {
		c.logger.Warn("mint failed, returning to confirmation",
			"ticket_id", c.ticket.ID,
			"error", err.Error(),
		)
		c.transition(StateSummaryConfirm, err.Error())
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "mint transaction failed")
	}

	c.txHash = txHash
	c.transition(StateComplete, "")
	c.logger.Info("listing minted",
		"ticket_id", c.ticket.ID,
		"record_id", req.RecordID,
		"tx_hash", txHash,
	)
	return txHash, nil
}

// Cancel aborts the session from any non-terminal state, stops pending
// timers, and returns to Idle so the workflow can restart with a fresh
// ticket. A mint transaction already submitted is left to finish on its own.
// Cancelling a terminal session is a no-op.
func (c *Controller) Cancel(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle || c.state.Terminal() {
		return
	}
	if reason == "" {
		reason = "cancelled"
	}
	c.stopObservation()
	c.ticket = Ticket{}
	c.session = VerificationSession{}
	c.proofValid = false
	c.fees = FeeBreakdown{}
	c.failReason = ""
	c.transition(StateIdle, reason)
}

// stopObservation, fail and transition require c.mu held.

func (c *Controller) stopObservation() {
	if c.observe != nil {
		c.observe.Stop()
		c.observe = nil
	}
}

func (c *Controller) fail(reason string) {
	c.stopObservation()
	c.failReason = reason
	c.transition(StateFailed, reason)
}

func (c *Controller) transition(next State, reason string) {
	c.state = next
	update := Update{State: next, Reason: reason, TxHash: c.txHash}
	select {
	case c.updates <- update:
	default:
	}
}

func (c *Controller) wrongState(want State) error {
	return dErrors.New(dErrors.CodeConflict,
		"operation requires state "+string(want)+", session is "+string(c.state))
}
