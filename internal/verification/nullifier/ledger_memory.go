package nullifier

import (
	"context"
	"sync"
)

// InMemoryLedger is the single-process ledger. Created at process start,
// cleared only at teardown. For multi-instance deployments use RedisLedger;
// in-memory sets do not coordinate across processes.
type InMemoryLedger struct {
	mu   sync.Mutex
	used map[string]struct{}
}

var _ Ledger = (*InMemoryLedger)(nil)

// NewInMemoryLedger creates an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{used: make(map[string]struct{})}
}

// HasBeenUsed reports whether the nullifier was already consumed.
func (l *InMemoryLedger) HasBeenUsed(_ context.Context, nullifier string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.used[nullifier]
	return ok, nil
}

// MarkUsed records the nullifier under the ledger lock, making the
// check-then-set a single critical section.
func (l *InMemoryLedger) MarkUsed(_ context.Context, nullifier string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.used[nullifier]; ok {
		return false, nil
	}
	l.used[nullifier] = struct{}{}
	return true, nil
}
