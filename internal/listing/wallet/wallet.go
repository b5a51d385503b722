// Package wallet is the port to the wallet/ledger capability that submits the
// mint transaction. The chain itself is a black box behind this interface.
package wallet

import "context"

// MintRequest carries the arguments the marketplace contract's mintTicket
// entry point takes.
type MintRequest struct {
	RecordID      string
	Payout        float64
	AirlineFee    float64
	PlatformFee   float64
	TotalPrice    float64
	PNR           string
	PassengerName string
	WalletAddress string
}

// Wallet submits transactions. MintTicket blocks until the transaction is
// confirmed or ctx is done, and returns the transaction hash.
type Wallet interface {
	MintTicket(ctx context.Context, req MintRequest) (string, error)
}
