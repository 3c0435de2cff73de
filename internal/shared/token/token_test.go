package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")

	raw, err := Issue("user-1", TypeAccess, time.Minute)
	require.NoError(t, err)

	claims, err := Parse(raw, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt, 2*time.Second)
}

func TestParse_WrongType(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")

	raw, err := Issue("user-1", TypeAccess, time.Minute)
	require.NoError(t, err)

	_, err = Parse(raw, TypeRefresh)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Expired(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")

	raw, err := Issue("user-1", TypeAccess, -time.Minute)
	require.NoError(t, err)

	_, err = Parse(raw, TypeAccess)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	SetSecret("one")
	raw, err := Issue("user-1", TypeAccess, time.Minute)
	require.NoError(t, err)

	SetSecret("two")
	defer SetSecret("")

	_, err = Parse(raw, "")
	assert.ErrorIs(t, err, ErrInvalid)
}
