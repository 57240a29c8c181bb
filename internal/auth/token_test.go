package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnhub/internal/apperrors"
	"learnhub/internal/shared"
)

func TestTokenRoundtrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := tm.Issue("usr_1", shared.RoleStudent)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_1", claims.UserID)
	assert.Equal(t, shared.RoleStudent, claims.Role)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, _, err := tm.Issue("usr_1", shared.RoleStudent)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuth))
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", time.Hour).Issue("usr_1", shared.RoleEducator)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Verify(token)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuth))
}

func TestTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	_, err := tm.Verify("not.a.token")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindAuth))
}
