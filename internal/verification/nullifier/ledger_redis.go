package nullifier

import (
	"context"

	"github.com/redis/go-redis/v9"

	dErrors "seatswap/pkg/domain-errors"
)

const nullifierKeyPrefix = "vc:nf:"

// RedisLedger coordinates replay protection across gateway instances.
// SETNX gives the linearizable check-and-set the Ledger contract requires in
// a single round trip. Keys never expire.
type RedisLedger struct {
	client *redis.Client
}

var _ Ledger = (*RedisLedger)(nil)

// NewRedisLedger constructs a Redis-backed ledger.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

// HasBeenUsed reports whether the nullifier was already consumed.
func (l *RedisLedger) HasBeenUsed(ctx context.Context, nullifier string) (bool, error) {
	n, err := l.client.Exists(ctx, nullifierKeyPrefix+nullifier).Result()
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "redis exists nullifier")
	}
	return n > 0, nil
}

// MarkUsed records the nullifier with SETNX; only the first caller wins.
func (l *RedisLedger) MarkUsed(ctx context.Context, nullifier string) (bool, error) {
	inserted, err := l.client.SetNX(ctx, nullifierKeyPrefix+nullifier, "1", 0).Result()
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "redis setnx nullifier")
	}
	return inserted, nil
}
