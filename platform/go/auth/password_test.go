package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(1)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotContains(t, hash, "correct horse battery staple")

	require.True(t, hasher.Verify(hash, "correct horse battery staple"))
	require.False(t, hasher.Verify(hash, "wrong password"))
}

func TestVerifyMalformedHash(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(1)

	require.False(t, hasher.Verify("not-a-phc-string", "whatever"))
	require.False(t, hasher.Verify("", "whatever"))
}

func TestHashesAreSalted(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(2)

	first, err := hasher.Hash("same secret")
	require.NoError(t, err)
	second, err := hasher.Hash("same secret")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify(first, "same secret"))
	require.True(t, hasher.Verify(second, "same secret"))
}
