//go:build integration

package configstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"seatswap/internal/verification"
	dErrors "seatswap/pkg/domain-errors"
	"seatswap/pkg/testutil/containers"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	store := NewPostgresStore(pc.Pool)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	cfg := verification.VerificationConfig{MinimumAge: 21, ExcludedCountries: []string{"PRK", "IRN"}}
	require.NoError(t, store.SetConfig(ctx, "cfg-pg-1", cfg))

	got, err := store.GetConfig(ctx, "cfg-pg-1")
	require.NoError(t, err)
	require.Equal(t, 21, got.MinimumAge)
	require.Equal(t, []string{"PRK", "IRN"}, got.ExcludedCountries)

	// Upsert keeps the id stable and replaces the rules.
	require.NoError(t, store.SetConfig(ctx, "cfg-pg-1", verification.VerificationConfig{MinimumAge: 25}))
	got, err = store.GetConfig(ctx, "cfg-pg-1")
	require.NoError(t, err)
	require.Equal(t, 25, got.MinimumAge)
	require.Empty(t, got.ExcludedCountries)

	_, err = store.GetConfig(ctx, "missing")
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
