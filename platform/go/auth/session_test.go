package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odontox-io/odontox/platform/go/authz"
)

func testClaims() Claims {
	return Claims{
		PrincipalID: uuid.New(),
		TenantID:    uuid.New(),
		Role:        authz.RoleDentist,
	}
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	issuer, err := NewSessionIssuer("test-signing-key", time.Hour)
	require.NoError(t, err)

	claims := testClaims()
	token, err := issuer.Issue(claims, time.Now())
	require.NoError(t, err)

	got, err := issuer.Validate(token)
	require.NoError(t, err)
	require.Equal(t, claims, got)
}

func TestValidateExpiredToken(t *testing.T) {
	t.Parallel()

	issuer, err := NewSessionIssuer("test-signing-key", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(testClaims(), time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateWrongKey(t *testing.T) {
	t.Parallel()

	issuer, err := NewSessionIssuer("key-one", time.Hour)
	require.NoError(t, err)
	other, err := NewSessionIssuer("key-two", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue(testClaims(), time.Now())
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateGarbage(t *testing.T) {
	t.Parallel()

	issuer, err := NewSessionIssuer("test-signing-key", time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.Validate(token)
		require.ErrorIs(t, err, ErrInvalidSession)
	}
}

func TestNewSessionIssuerRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewSessionIssuer("", time.Hour)
	require.Error(t, err)
}
