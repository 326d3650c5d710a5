package security

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)

	require.True(t, CheckPassword(hash, "hunter2"))
	require.False(t, CheckPassword(hash, "hunter3"))
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	a, err := HashPassword("same", 4)
	require.NoError(t, err)
	b, err := HashPassword("same", 4)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	require.False(t, CheckPassword("not-a-bcrypt-hash", "anything"))
}
