package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-signing-key", "seatswap-test")

	token, err := svc.GenerateToken("operator-1", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims.SubjectID)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	issuer := NewService("key-a", "seatswap-test")
	verifier := NewService("key-b", "seatswap-test")

	token, err := issuer.GenerateToken("operator-1", time.Minute)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewService("test-signing-key", "seatswap-test")

	token, err := svc.GenerateToken("operator-1", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}
