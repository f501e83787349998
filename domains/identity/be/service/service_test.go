package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/persistence"
)

type mockRepository struct {
	getUserByEmailFn    func(ctx context.Context, email string) (persistence.User, error)
	createUserFn        func(ctx context.Context, params persistence.CreateUserParams) (persistence.User, error)
	setEmailVerifiedFn  func(ctx context.Context, email string, verifiedAt time.Time) error
	listMembershipsFn   func(ctx context.Context, userID uuid.UUID) ([]persistence.Membership, error)
	createMembershipFn  func(ctx context.Context, tenantID, userID uuid.UUID, role string) error
	getTenantBySlugFn   func(ctx context.Context, slug string) (persistence.TenantRecord, error)
	insertTokenFn       func(ctx context.Context, identifier, token string, expires time.Time) error
	getTokenFn          func(ctx context.Context, identifier, token string) (persistence.VerificationToken, error)
	deleteTokensFn      func(ctx context.Context, identifier string) error
}

func (m *mockRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if m.getUserByEmailFn == nil {
		panic("getUserByEmailFn not configured")
	}
	return m.getUserByEmailFn(ctx, email)
}

func (m *mockRepository) CreateUser(ctx context.Context, params persistence.CreateUserParams) (persistence.User, error) {
	if m.createUserFn == nil {
		panic("createUserFn not configured")
	}
	return m.createUserFn(ctx, params)
}

func (m *mockRepository) SetEmailVerified(ctx context.Context, email string, verifiedAt time.Time) error {
	if m.setEmailVerifiedFn == nil {
		panic("setEmailVerifiedFn not configured")
	}
	return m.setEmailVerifiedFn(ctx, email, verifiedAt)
}

func (m *mockRepository) ListMemberships(ctx context.Context, userID uuid.UUID) ([]persistence.Membership, error) {
	if m.listMembershipsFn == nil {
		panic("listMembershipsFn not configured")
	}
	return m.listMembershipsFn(ctx, userID)
}

func (m *mockRepository) CreateMembership(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	if m.createMembershipFn == nil {
		panic("createMembershipFn not configured")
	}
	return m.createMembershipFn(ctx, tenantID, userID, role)
}

func (m *mockRepository) GetTenantBySlug(ctx context.Context, slug string) (persistence.TenantRecord, error) {
	if m.getTenantBySlugFn == nil {
		panic("getTenantBySlugFn not configured")
	}
	return m.getTenantBySlugFn(ctx, slug)
}

func (m *mockRepository) InsertVerificationToken(ctx context.Context, identifier, token string, expires time.Time) error {
	if m.insertTokenFn == nil {
		panic("insertTokenFn not configured")
	}
	return m.insertTokenFn(ctx, identifier, token, expires)
}

func (m *mockRepository) GetVerificationToken(ctx context.Context, identifier, token string) (persistence.VerificationToken, error) {
	if m.getTokenFn == nil {
		panic("getTokenFn not configured")
	}
	return m.getTokenFn(ctx, identifier, token)
}

func (m *mockRepository) DeleteVerificationTokens(ctx context.Context, identifier string) error {
	if m.deleteTokensFn == nil {
		panic("deleteTokensFn not configured")
	}
	return m.deleteTokensFn(ctx, identifier)
}

type mockSender struct {
	sendFn func(ctx context.Context, to, subject, html string) error
}

func (m *mockSender) Send(ctx context.Context, to, subject, html string) error {
	if m.sendFn == nil {
		return nil
	}
	return m.sendFn(ctx, to, subject, html)
}

func strPtr(s string) *string { return &s }

var testHasher = auth.NewHasher(2)

func hashedUser(t *testing.T, email, password string) persistence.User {
	t.Helper()
	hash, err := testHasher.Hash(password)
	require.NoError(t, err)
	return persistence.User{ID: uuid.New(), Email: email, PasswordHash: &hash}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()

	user := hashedUser(t, "dentist@clinic.test", "right-password")
	nohash := persistence.User{ID: uuid.New(), Email: "invited@clinic.test"}

	repository := &mockRepository{
		getUserByEmailFn: func(_ context.Context, email string) (persistence.User, error) {
			switch email {
			case "dentist@clinic.test":
				return user, nil
			case "invited@clinic.test":
				return nohash, nil
			}
			return persistence.User{}, persistence.ErrNotFound
		},
	}
	svc := New(repository, testHasher, &mockSender{}, "http://localhost/auth")

	cases := []AuthenticateInput{
		{Email: "nobody@clinic.test", Password: "anything"},
		{Email: "dentist@clinic.test", Password: "wrong-password"},
		{Email: "invited@clinic.test", Password: "anything"},
	}
	for _, input := range cases {
		_, err := svc.Authenticate(context.Background(), input)
		require.ErrorIs(t, err, ErrInvalidCredentials, "input %v", input.Email)
	}
}

func TestAuthenticateSingleMembership(t *testing.T) {
	t.Parallel()

	user := hashedUser(t, "dentist@clinic.test", "right-password")
	tenantID := uuid.New()

	repository := &mockRepository{
		getUserByEmailFn: func(_ context.Context, email string) (persistence.User, error) {
			require.Equal(t, "dentist@clinic.test", email)
			return user, nil
		},
		listMembershipsFn: func(_ context.Context, userID uuid.UUID) ([]persistence.Membership, error) {
			require.Equal(t, user.ID, userID)
			return []persistence.Membership{
				{TenantID: tenantID, UserID: user.ID, Role: "DENTIST", TenantSlug: "smile-dental"},
			}, nil
		},
	}
	svc := New(repository, testHasher, &mockSender{}, "http://localhost/auth")

	claims, err := svc.Authenticate(context.Background(), AuthenticateInput{
		Email:    "  Dentist@Clinic.Test ",
		Password: "right-password",
	})
	require.NoError(t, err)
	require.Equal(t, auth.Claims{PrincipalID: user.ID, TenantID: tenantID, Role: authz.RoleDentist}, claims)
}

func TestAuthenticateNoMembership(t *testing.T) {
	t.Parallel()

	user := hashedUser(t, "orphan@clinic.test", "right-password")
	repository := &mockRepository{
		getUserByEmailFn: func(_ context.Context, _ string) (persistence.User, error) {
			return user, nil
		},
		listMembershipsFn: func(_ context.Context, _ uuid.UUID) ([]persistence.Membership, error) {
			return nil, nil
		},
	}
	svc := New(repository, testHasher, &mockSender{}, "http://localhost/auth")

	_, err := svc.Authenticate(context.Background(), AuthenticateInput{
		Email:    "orphan@clinic.test",
		Password: "right-password",
	})
	require.ErrorIs(t, err, ErrNoMembership)
}

func TestAuthenticateMultipleMemberships(t *testing.T) {
	t.Parallel()

	user := hashedUser(t, "locum@clinic.test", "right-password")
	tenantA := uuid.New()
	tenantB := uuid.New()

	repository := &mockRepository{
		getUserByEmailFn: func(_ context.Context, _ string) (persistence.User, error) {
			return user, nil
		},
		listMembershipsFn: func(_ context.Context, _ uuid.UUID) ([]persistence.Membership, error) {
			return []persistence.Membership{
				{TenantID: tenantA, UserID: user.ID, Role: "DENTIST", TenantSlug: "clinic-a"},
				{TenantID: tenantB, UserID: user.ID, Role: "RECEPTION", TenantSlug: "clinic-b"},
			}, nil
		},
	}
	svc := New(repository, testHasher, &mockSender{}, "http://localhost/auth")

	// Without a hint the choice is ambiguous.
	_, err := svc.Authenticate(context.Background(), AuthenticateInput{
		Email:    "locum@clinic.test",
		Password: "right-password",
	})
	require.ErrorIs(t, err, ErrMultipleMemberships)

	// A hint resolves the ambiguity.
	claims, err := svc.Authenticate(context.Background(), AuthenticateInput{
		Email:      "locum@clinic.test",
		Password:   "right-password",
		TenantSlug: strPtr("clinic-b"),
	})
	require.NoError(t, err)
	require.Equal(t, tenantB, claims.TenantID)
	require.Equal(t, authz.RoleReception, claims.Role)

	// A hint naming a clinic the account does not belong to is a membership
	// failure, not a fallback to another clinic.
	_, err = svc.Authenticate(context.Background(), AuthenticateInput{
		Email:      "locum@clinic.test",
		Password:   "right-password",
		TenantSlug: strPtr("clinic-z"),
	})
	require.ErrorIs(t, err, ErrNoMembership)
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{}, testHasher, &mockSender{}, "http://localhost/auth")

	_, err := svc.Signup(context.Background(), SignupInput{Email: "not-an-email", Password: "short"})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "email")
	require.Contains(t, validationErr.Fields, "password")
}

func TestSignupDefaults(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	var createdRole string
	var createdTenant uuid.UUID

	repository := &mockRepository{
		getTenantBySlugFn: func(_ context.Context, slug string) (persistence.TenantRecord, error) {
			require.Equal(t, "demo-clinic", slug)
			return persistence.TenantRecord{ID: tenantID, Slug: slug}, nil
		},
		createUserFn: func(_ context.Context, params persistence.CreateUserParams) (persistence.User, error) {
			require.Equal(t, "newuser@clinic.test", params.Email)
			require.NotNil(t, params.PasswordHash)
			return persistence.User{ID: uuid.New(), Email: params.Email, Name: params.Name}, nil
		},
		createMembershipFn: func(_ context.Context, tid, _ uuid.UUID, role string) error {
			createdTenant = tid
			createdRole = role
			return nil
		},
	}
	svc := New(repository, testHasher, &mockSender{}, "http://localhost/auth")

	user, err := svc.Signup(context.Background(), SignupInput{
		Email:    " NewUser@Clinic.Test ",
		Password: "long-enough-password",
	})
	require.NoError(t, err)
	require.Equal(t, "newuser@clinic.test", user.Email)
	require.Equal(t, "ORG_ADMIN", createdRole)
	require.Equal(t, tenantID, createdTenant)
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		getTenantBySlugFn: func(_ context.Context, slug string) (persistence.TenantRecord, error) {
			return persistence.TenantRecord{ID: uuid.New(), Slug: slug}, nil
		},
		createUserFn: func(_ context.Context, _ persistence.CreateUserParams) (persistence.User, error) {
			return persistence.User{}, persistence.ErrConflict
		},
	}
	svc := New(repository, testHasher, &mockSender{}, "http://localhost/auth")

	_, err := svc.Signup(context.Background(), SignupInput{
		Email:    "taken@clinic.test",
		Password: "long-enough-password",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupUnknownTenant(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		getTenantBySlugFn: func(_ context.Context, _ string) (persistence.TenantRecord, error) {
			return persistence.TenantRecord{}, persistence.ErrNotFound
		},
	}
	svc := New(repository, testHasher, &mockSender{}, "http://localhost/auth")

	_, err := svc.Signup(context.Background(), SignupInput{
		Email:      "newuser@clinic.test",
		Password:   "long-enough-password",
		TenantSlug: strPtr("ghost-clinic"),
	})
	require.ErrorIs(t, err, ErrTenantNotFound)
}

func TestRequestVerificationStoresTokenAndSends(t *testing.T) {
	t.Parallel()

	var storedToken string
	var storedIdentifier string
	var sentTo, sentHTML string

	repository := &mockRepository{
		insertTokenFn: func(_ context.Context, identifier, token string, expires time.Time) error {
			storedIdentifier = identifier
			storedToken = token
			require.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)
			return nil
		},
	}
	sender := &mockSender{
		sendFn: func(_ context.Context, to, _, html string) error {
			sentTo = to
			sentHTML = html
			return nil
		},
	}
	svc := New(repository, testHasher, sender, "http://localhost/auth")

	err := svc.RequestVerification(context.Background(), " Someone@Clinic.Test ")
	require.NoError(t, err)
	require.Equal(t, "someone@clinic.test", storedIdentifier)
	require.NotEmpty(t, storedToken)
	require.Equal(t, "someone@clinic.test", sentTo)
	require.Contains(t, sentHTML, "token="+storedToken)
	require.Contains(t, sentHTML, "http://localhost/auth/verify/confirm")
}

func TestConfirmVerification(t *testing.T) {
	t.Parallel()

	token := uuid.NewString()
	var verified, deleted bool

	repository := &mockRepository{
		getTokenFn: func(_ context.Context, identifier, got string) (persistence.VerificationToken, error) {
			require.Equal(t, "someone@clinic.test", identifier)
			if got != token {
				return persistence.VerificationToken{}, persistence.ErrNotFound
			}
			return persistence.VerificationToken{
				Identifier: identifier,
				Token:      token,
				Expires:    time.Now().Add(30 * time.Minute),
			}, nil
		},
		setEmailVerifiedFn: func(_ context.Context, email string, _ time.Time) error {
			require.Equal(t, "someone@clinic.test", email)
			verified = true
			return nil
		},
		deleteTokensFn: func(_ context.Context, identifier string) error {
			require.Equal(t, "someone@clinic.test", identifier)
			deleted = true
			return nil
		},
	}
	svc := New(repository, testHasher, &mockSender{}, "http://localhost/auth")

	require.NoError(t, svc.ConfirmVerification(context.Background(), "Someone@Clinic.Test", token))
	require.True(t, verified)
	require.True(t, deleted)

	// A token that does not match is rejected without touching the account.
	verified = false
	err := svc.ConfirmVerification(context.Background(), "someone@clinic.test", "bogus")
	require.ErrorIs(t, err, ErrTokenInvalid)
	require.False(t, verified)
}

func TestConfirmVerificationExpiredToken(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		getTokenFn: func(_ context.Context, identifier, token string) (persistence.VerificationToken, error) {
			return persistence.VerificationToken{
				Identifier: identifier,
				Token:      token,
				Expires:    time.Now().Add(-time.Minute),
			}, nil
		},
		setEmailVerifiedFn: func(_ context.Context, _ string, _ time.Time) error {
			t.Fatal("expired token must not verify the account")
			return nil
		},
	}
	svc := New(repository, testHasher, &mockSender{}, "http://localhost/auth")

	err := svc.ConfirmVerification(context.Background(), "someone@clinic.test", "expired-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
