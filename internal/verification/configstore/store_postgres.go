package configstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"seatswap/internal/verification"
	dErrors "seatswap/pkg/domain-errors"
)

// PostgresStore persists configs across restarts. Schema:
//
//	CREATE TABLE IF NOT EXISTS verification_configs (
//	    config_id          TEXT PRIMARY KEY,
//	    minimum_age        INT NOT NULL,
//	    excluded_countries TEXT[] NOT NULL DEFAULT '{}',
//	    ofac_check         BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore constructs a Postgres-backed config store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the backing table.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS verification_configs (
			config_id          TEXT PRIMARY KEY,
			minimum_age        INT NOT NULL,
			excluded_countries TEXT[] NOT NULL DEFAULT '{}',
			ofac_check         BOOLEAN NOT NULL DEFAULT FALSE,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "migrate verification_configs")
	}
	return nil
}

// SetConfig upserts cfg under id.
func (s *PostgresStore) SetConfig(ctx context.Context, id string, cfg verification.VerificationConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO verification_configs (config_id, minimum_age, excluded_countries, ofac_check)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_id) DO UPDATE SET
			minimum_age        = EXCLUDED.minimum_age,
			excluded_countries = EXCLUDED.excluded_countries,
			ofac_check         = EXCLUDED.ofac_check`,
		id, cfg.MinimumAge, cfg.ExcludedCountries, cfg.OFACCheck)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "insert config")
	}
	return nil
}

// GetConfig returns the config stored under id.
func (s *PostgresStore) GetConfig(ctx context.Context, id string) (verification.VerificationConfig, error) {
	var cfg verification.VerificationConfig
	err := s.pool.QueryRow(ctx, `
		SELECT config_id, minimum_age, excluded_countries, ofac_check
		FROM verification_configs WHERE config_id = $1`, id).
		Scan(&cfg.ConfigID, &cfg.MinimumAge, &cfg.ExcludedCountries, &cfg.OFACCheck)
	if errors.Is(err, pgx.ErrNoRows) {
		return verification.VerificationConfig{}, dErrors.New(dErrors.CodeNotFound, "configuration not found for id: "+id)
	}
	if err != nil {
		return verification.VerificationConfig{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "select config")
	}
	return cfg, nil
}
