// Package listing drives a seller's resale session: identity proof,
// pricing, confirmation, and the on-chain mint.
package listing

import (
	dErrors "seatswap/pkg/domain-errors"
)

// State is the listing session's position in the workflow.
type State string

const (
	StateIdle           State = "idle"
	StateAwaitingProof  State = "awaiting_proof"
	StateProofReceived  State = "proof_received"
	StatePriceInput     State = "price_input"
	StateSummaryConfirm State = "summary_confirm"
	StateMinting        State = "minting"
	StateComplete       State = "complete"
	StateFailed         State = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Ticket is the flight ticket being resold.
type Ticket struct {
	ID            string `json:"id"`
	Airline       string `json:"airline"`
	FlightNumber  string `json:"flightNumber"`
	PNR           string `json:"pnr"`
	PassengerName string `json:"passengerName"`
	Date          string `json:"date"`
	SellerWallet  string `json:"sellerWallet"`
}

// Validate checks the fields the workflow and the mint cannot proceed without.
func (t Ticket) Validate() error {
	switch {
	case t.ID == "":
		return dErrors.New(dErrors.CodeInvalidInput, "ticket id is required")
	case t.Airline == "":
		return dErrors.New(dErrors.CodeInvalidInput, "airline is required")
	case t.PNR == "":
		return dErrors.New(dErrors.CodeInvalidInput, "pnr is required")
	case t.PassengerName == "":
		return dErrors.New(dErrors.CodeInvalidInput, "passenger name is required")
	case t.Date == "":
		return dErrors.New(dErrors.CodeInvalidInput, "date is required")
	case t.SellerWallet == "":
		return dErrors.New(dErrors.CodeInvalidInput, "seller wallet is required")
	}
	return nil
}

// VerificationSession binds a session's registered rule set to the seller
// and the ticket the proof must cover. Held in controller memory only.
type VerificationSession struct {
	ConfigID    string
	SubjectID   string
	ContextData []byte
}

// UserContext encodes the session as the opaque userContextData the gateway
// resolves scope from: "subject" or "subject:context".
func (s VerificationSession) UserContext() string {
	if len(s.ContextData) == 0 {
		return s.SubjectID
	}
	return s.SubjectID + ":" + string(s.ContextData)
}

// ProofEvent is the single-shot outcome of the proof scan.
type ProofEvent struct {
	Valid   bool
	Details string
}

// Update is emitted on every state transition.
type Update struct {
	State  State
	Reason string
	TxHash string
}
