package configstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"seatswap/internal/verification"
	dErrors "seatswap/pkg/domain-errors"
)

const configKeyPrefix = "vc:cfg:"

// RedisStore is the distributed config store for multi-instance deployments.
// Configs are stored as JSON without expiry; they share the process-lifetime
// semantics of the memory store, scoped to the Redis instance instead.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore constructs a Redis-backed config store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// SetConfig stores cfg under id, overwriting any previous config.
func (s *RedisStore) SetConfig(ctx context.Context, id string, cfg verification.VerificationConfig) error {
	cfg.ConfigID = id
	payload, err := json.Marshal(cfg)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "marshal config")
	}
	if err := s.client.Set(ctx, configKeyPrefix+id, payload, 0).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "redis set config")
	}
	return nil
}

// GetConfig returns the config stored under id.
func (s *RedisStore) GetConfig(ctx context.Context, id string) (verification.VerificationConfig, error) {
	payload, err := s.client.Get(ctx, configKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return verification.VerificationConfig{}, dErrors.New(dErrors.CodeNotFound, "configuration not found for id: "+id)
	}
	if err != nil {
		return verification.VerificationConfig{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "redis get config")
	}

	var cfg verification.VerificationConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return verification.VerificationConfig{}, dErrors.Wrap(err, dErrors.CodeInternal, "unmarshal config")
	}
	return cfg, nil
}
