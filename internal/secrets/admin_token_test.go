package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestAdminTokenKeyringThenEnv(t *testing.T) {
	keyring.MockInit()
	t.Setenv(AdminTokenEnv, "")

	_, err := GetAdminToken()
	require.ErrorIs(t, err, ErrNoAdminToken)

	t.Setenv(AdminTokenEnv, " env-token-0123456789 ")
	tok, err := GetAdminToken()
	require.NoError(t, err)
	assert.Equal(t, "env-token-0123456789", tok)

	require.NoError(t, SetAdminToken("keyring-token-0123456789"))
	tok, err = GetAdminToken()
	require.NoError(t, err)
	assert.Equal(t, "keyring-token-0123456789", tok)

	require.NoError(t, DeleteAdminToken())
	require.NoError(t, DeleteAdminToken())
	tok, err = GetAdminToken()
	require.NoError(t, err)
	assert.Equal(t, "env-token-0123456789", tok)
}

func TestSetAdminTokenRejectsShort(t *testing.T) {
	keyring.MockInit()
	require.Error(t, SetAdminToken(""))
	require.Error(t, SetAdminToken("short"))
}

func TestNewAdminToken(t *testing.T) {
	a, err := NewAdminToken(24)
	require.NoError(t, err)
	b, err := NewAdminToken(24)
	require.NoError(t, err)
	assert.Len(t, a, 48)
	assert.NotEqual(t, a, b)
}
