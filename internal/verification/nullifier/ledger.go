// Package nullifier tracks consumed proof nullifiers to enforce at-most-once
// use per proof.
package nullifier

import "context"

// Ledger is a monotonic set of consumed nullifiers. Entries are only ever
// added; unbounded growth is an accepted operational tradeoff here, a durable
// shared store is the deployment's concern.
type Ledger interface {
	// HasBeenUsed reports whether the nullifier was already consumed.
	HasBeenUsed(ctx context.Context, nullifier string) (bool, error)
	// MarkUsed atomically records the nullifier as consumed. It returns true
	// when this call inserted it and false when it was already present. Two
	// concurrent calls for the same nullifier must never both return true.
	MarkUsed(ctx context.Context, nullifier string) (bool, error)
}
