package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Generate(42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, 42, userID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a", time.Hour).Generate(1, "bob")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Validate(token)
	require.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := NewTokenService("secret", -time.Minute).Generate(1, "bob")
	require.NoError(t, err)

	_, err = NewTokenService("secret", -time.Minute).Validate(token)
	require.Error(t, err)
}
