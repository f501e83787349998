package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odontox-io/odontox/domains/identity/be/repo"
	"github.com/odontox-io/odontox/platform/go/persistence"
)

func newLifecycleService(t *testing.T) (*repo.MemoryRepository, Service) {
	t.Helper()
	repository := repo.NewMemoryRepository()
	return repository, New(repository, testHasher, &mockSender{}, "http://localhost/auth")
}

func TestVerificationTokenSingleUse(t *testing.T) {
	t.Parallel()

	repository, svc := newLifecycleService(t)
	ctx := context.Background()

	_, err := repository.CreateUser(ctx, persistence.CreateUserParams{Email: "owner@clinic.test"})
	require.NoError(t, err)

	// Two outstanding requests leave two valid tokens.
	require.NoError(t, svc.RequestVerification(ctx, "owner@clinic.test"))
	require.NoError(t, svc.RequestVerification(ctx, "owner@clinic.test"))

	tokens := repository.TokensFor("owner@clinic.test")
	require.Len(t, tokens, 2)
	first, second := tokens[0].Token, tokens[1].Token

	require.NoError(t, svc.ConfirmVerification(ctx, "owner@clinic.test", first))

	user, err := repository.GetUserByEmail(ctx, "owner@clinic.test")
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerified)

	// The consumed token is gone, and the first confirmation burned the
	// sibling token alongside it.
	require.ErrorIs(t, svc.ConfirmVerification(ctx, "owner@clinic.test", first), ErrTokenInvalid)
	require.ErrorIs(t, svc.ConfirmVerification(ctx, "owner@clinic.test", second), ErrTokenInvalid)
	require.Empty(t, repository.TokensFor("owner@clinic.test"))
}

func TestReverificationKeepsFirstTimestamp(t *testing.T) {
	t.Parallel()

	repository, svc := newLifecycleService(t)
	ctx := context.Background()

	_, err := repository.CreateUser(ctx, persistence.CreateUserParams{Email: "owner@clinic.test"})
	require.NoError(t, err)

	require.NoError(t, svc.RequestVerification(ctx, "owner@clinic.test"))
	tokens := repository.TokensFor("owner@clinic.test")
	require.Len(t, tokens, 1)
	require.NoError(t, svc.ConfirmVerification(ctx, "owner@clinic.test", tokens[0].Token))

	user, err := repository.GetUserByEmail(ctx, "owner@clinic.test")
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerified)
	verifiedAt := *user.EmailVerified

	// A later request/confirm round succeeds but the verified timestamp
	// keeps its first-set value.
	require.NoError(t, svc.RequestVerification(ctx, "owner@clinic.test"))
	tokens = repository.TokensFor("owner@clinic.test")
	require.Len(t, tokens, 1)
	require.NoError(t, svc.ConfirmVerification(ctx, "owner@clinic.test", tokens[0].Token))

	user, err = repository.GetUserByEmail(ctx, "owner@clinic.test")
	require.NoError(t, err)
	require.NotNil(t, user.EmailVerified)
	require.True(t, user.EmailVerified.Equal(verifiedAt))
}
