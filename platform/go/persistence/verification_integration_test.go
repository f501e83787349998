package persistence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestVerificationTokensAreSingleUse exercises the token and verified-flag
// writes against a real database. Set TEST_DATABASE_URL to run it.
func TestVerificationTokensAreSingleUse(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := NewPool(ctx, PoolConfig{ConnString: dsn})
	require.NoError(t, err)
	defer ClosePool(pool)

	require.NoError(t, ApplySchema(ctx, pool))

	userStore, err := NewUserStore(pool)
	require.NoError(t, err)
	tokenStore, err := NewTokenStore(pool)
	require.NoError(t, err)

	suffix := uuid.NewString()[:8]
	emailAddr := "verify-" + suffix + "@clinic.test"

	_, err = userStore.CreateUser(ctx, CreateUserParams{Email: emailAddr})
	require.NoError(t, err)

	expires := time.Now().Add(time.Hour)
	first := uuid.NewString()
	second := uuid.NewString()

	require.NoError(t, tokenStore.InsertToken(ctx, emailAddr, first, expires))
	require.NoError(t, tokenStore.InsertToken(ctx, emailAddr, second, expires))
	// Re-inserting an existing token is an ignored no-op.
	require.NoError(t, tokenStore.InsertToken(ctx, emailAddr, first, expires.Add(time.Hour)))

	got, err := tokenStore.GetToken(ctx, emailAddr, first)
	require.NoError(t, err)
	require.Equal(t, first, got.Token)
	require.WithinDuration(t, expires, got.Expires, time.Second)

	firstSet := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, userStore.SetEmailVerified(ctx, emailAddr, firstSet))

	user, err := userStore.GetUserByEmail(ctx, emailAddr)
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerified)
	require.True(t, user.EmailVerified.Equal(firstSet))

	// Verifying again keeps the original timestamp.
	require.NoError(t, userStore.SetEmailVerified(ctx, emailAddr, firstSet.Add(time.Hour)))
	user, err = userStore.GetUserByEmail(ctx, emailAddr)
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerified)
	require.True(t, user.EmailVerified.Equal(firstSet))

	// Deleting burns every outstanding token for the identifier.
	require.NoError(t, tokenStore.DeleteTokens(ctx, emailAddr))
	_, err = tokenStore.GetToken(ctx, emailAddr, first)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = tokenStore.GetToken(ctx, emailAddr, second)
	require.ErrorIs(t, err, ErrNotFound)
}
