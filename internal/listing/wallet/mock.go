package wallet

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"

	dErrors "seatswap/pkg/domain-errors"
)

// MockWallet is a deterministic stand-in for the chain-backed wallet, usable
// in development and tests. The transaction hash is derived from the request
// so repeated runs produce stable output. FailNext makes the next mint fail,
// for exercising retry paths.
type MockWallet struct {
	Latency time.Duration

	mu       sync.Mutex
	failNext bool
	minted   []MintRequest
}

var _ Wallet = (*MockWallet)(nil)

// FailNext arms a one-shot failure on the next MintTicket call.
func (w *MockWallet) FailNext() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.failNext = true
}

// Minted returns the requests that produced a transaction, in order.
func (w *MockWallet) Minted() []MintRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]MintRequest(nil), w.minted...)
}

// MintTicket simulates submitting and confirming the mint transaction.
func (w *MockWallet) MintTicket(ctx context.Context, req MintRequest) (string, error) {
	if w.Latency > 0 {
		select {
		case <-time.After(w.Latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if req.RecordID == "" || req.WalletAddress == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "record id and wallet address are required")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failNext {
		w.failNext = false
		return "", dErrors.New(dErrors.CodeUnavailable, "transaction reverted")
	}

	w.minted = append(w.minted, req)
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "%s|%s|%.2f", req.RecordID, req.WalletAddress, req.TotalPrice)
	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}
