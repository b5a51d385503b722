package configstore

import (
	"context"
	"sync"

	"seatswap/internal/verification"
	dErrors "seatswap/pkg/domain-errors"
)

// InMemoryStore is the default config store. Configs live for the process
// lifetime and are never deleted.
type InMemoryStore struct {
	mu      sync.RWMutex
	configs map[string]verification.VerificationConfig
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory config store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{configs: make(map[string]verification.VerificationConfig)}
}

// SetConfig stores cfg under id, overwriting any previous config.
func (s *InMemoryStore) SetConfig(_ context.Context, id string, cfg verification.VerificationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg.ConfigID = id
	s.configs[id] = cfg
	return nil
}

// GetConfig returns the config stored under id.
func (s *InMemoryStore) GetConfig(_ context.Context, id string) (verification.VerificationConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[id]
	if !ok {
		return verification.VerificationConfig{}, dErrors.New(dErrors.CodeNotFound, "configuration not found for id: "+id)
	}
	return cfg, nil
}
