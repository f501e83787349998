package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/domains/identity/be/repo"
	"github.com/odontox-io/odontox/platform/go/auth"
	"github.com/odontox-io/odontox/platform/go/authz"
	"github.com/odontox-io/odontox/platform/go/email"
	"github.com/odontox-io/odontox/platform/go/persistence"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Domain sentinel errors. Authentication failures deliberately collapse
// unknown accounts, missing hashes, and wrong passwords into one error so
// responses cannot be used as an account-existence oracle.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoMembership        = errors.New("no organization membership")
	ErrMultipleMemberships = errors.New("multiple organization memberships")
	ErrEmailTaken          = errors.New("email already registered")
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTokenInvalid        = errors.New("verification token invalid")
)

const (
	defaultSignupRole = authz.RoleOrgAdmin
	defaultTenantSlug = "demo-clinic"

	verificationTTL = time.Hour
)

// User is the domain view of an account record.
type User struct {
	ID            uuid.UUID
	Email         string
	Name          *string
	EmailVerified *time.Time
}

// AuthenticateInput carries a credential login attempt. TenantSlug is an
// optional hint used to pick a membership when the account belongs to more
// than one organization.
type AuthenticateInput struct {
	Email      string
	Password   string
	TenantSlug *string
}

// SignupInput carries an account registration request. Role and TenantSlug
// fall back to the onboarding defaults when absent.
type SignupInput struct {
	Email      string
	Password   string
	Name       *string
	Role       *string
	TenantSlug *string
}

// Service defines the business operations for the identity domain.
type Service interface {
	Authenticate(ctx context.Context, input AuthenticateInput) (auth.Claims, error)
	Signup(ctx context.Context, input SignupInput) (User, error)
	RequestVerification(ctx context.Context, emailAddr string) error
	ConfirmVerification(ctx context.Context, emailAddr, token string) error
}

type service struct {
	repo    repo.Repository
	hasher  *auth.Hasher
	sender  email.Sender
	baseURL string
}

// New constructs an identity Service. baseURL is the public prefix under
// which the verification confirm endpoint is reachable.
func New(r repo.Repository, hasher *auth.Hasher, sender email.Sender, baseURL string) Service {
	if r == nil {
		panic("identity repository is required")
	}
	if hasher == nil {
		panic("password hasher is required")
	}
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &service{
		repo:    r,
		hasher:  hasher,
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *service) Authenticate(ctx context.Context, input AuthenticateInput) (auth.Claims, error) {
	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" || input.Password == "" {
		return auth.Claims{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return auth.Claims{}, ErrInvalidCredentials
		}
		return auth.Claims{}, err
	}

	// Accounts provisioned without a credential (e.g. invited but never
	// activated) cannot log in.
	if user.PasswordHash == nil {
		return auth.Claims{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(*user.PasswordHash, input.Password) {
		return auth.Claims{}, ErrInvalidCredentials
	}

	memberships, err := s.repo.ListMemberships(ctx, user.ID)
	if err != nil {
		return auth.Claims{}, err
	}
	if len(memberships) == 0 {
		return auth.Claims{}, ErrNoMembership
	}

	selected, err := selectMembership(memberships, input.TenantSlug)
	if err != nil {
		return auth.Claims{}, err
	}

	role, ok := authz.ParseRole(selected.Role)
	if !ok {
		return auth.Claims{}, fmt.Errorf("membership %s/%s has unknown role %q", selected.TenantID, user.ID, selected.Role)
	}

	return auth.Claims{
		PrincipalID: user.ID,
		TenantID:    selected.TenantID,
		Role:        role,
	}, nil
}

// selectMembership resolves which organization a multi-clinic account logs
// into. A slug hint picks the matching membership; without one the choice is
// only unambiguous when exactly one membership exists.
func selectMembership(memberships []persistence.Membership, slugHint *string) (persistence.Membership, error) {
	if slugHint != nil {
		hint := strings.TrimSpace(*slugHint)
		if hint != "" {
			for _, m := range memberships {
				if m.TenantSlug == hint {
					return m, nil
				}
			}
			return persistence.Membership{}, ErrNoMembership
		}
	}

	if len(memberships) == 1 {
		return memberships[0], nil
	}
	return persistence.Membership{}, ErrMultipleMemberships
}

func (s *service) Signup(ctx context.Context, input SignupInput) (User, error) {
	fieldErrors := FieldErrors{}

	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" {
		fieldErrors.add("email", "email is required")
	} else if !strings.Contains(emailAddr, "@") {
		fieldErrors.add("email", "email must contain '@'")
	}

	if input.Password == "" {
		fieldErrors.add("password", "password is required")
	} else if len(input.Password) < 8 {
		fieldErrors.add("password", "password must be at least 8 characters")
	}

	role := defaultSignupRole
	if input.Role != nil && strings.TrimSpace(*input.Role) != "" {
		parsed, ok := authz.ParseRole(strings.TrimSpace(*input.Role))
		if !ok {
			fieldErrors.add("role", fmt.Sprintf("unknown role %q", *input.Role))
		} else {
			role = parsed
		}
	}

	slug := defaultTenantSlug
	if input.TenantSlug != nil && strings.TrimSpace(*input.TenantSlug) != "" {
		slug = strings.TrimSpace(*input.TenantSlug)
	}

	if len(fieldErrors) > 0 {
		return User{}, &ValidationError{Fields: fieldErrors}
	}

	tenantRecord, err := s.repo.GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return User{}, ErrTenantNotFound
		}
		return User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return User{}, err
	}

	var name *string
	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		trimmed := strings.TrimSpace(*input.Name)
		name = &trimmed
	}

	record, err := s.repo.CreateUser(ctx, persistence.CreateUserParams{
		Email:        emailAddr,
		Name:         name,
		PasswordHash: &hash,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrConflict) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}

	if err := s.repo.CreateMembership(ctx, tenantRecord.ID, record.ID, string(role)); err != nil {
		return User{}, err
	}

	return mapUser(record), nil
}

// RequestVerification stores a fresh token and mails the confirmation link.
// It behaves identically whether or not an account exists for the address.
func (s *service) RequestVerification(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return newValidationError(map[string]string{"email": "email is required"})
	}

	token := uuid.NewString()
	expires := time.Now().Add(verificationTTL)
	if err := s.repo.InsertVerificationToken(ctx, emailAddr, token, expires); err != nil {
		return err
	}

	confirmURL := fmt.Sprintf("%s/verify/confirm?token=%s&email=%s",
		s.baseURL, url.QueryEscape(token), url.QueryEscape(emailAddr))

	html := fmt.Sprintf(
		`<p>Confirm your email address to activate your OdontoX account.</p><p><a href=%q>Verify email</a></p><p>The link expires in one hour.</p>`,
		confirmURL)

	return s.sender.Send(ctx, emailAddr, "Verify your OdontoX email", html)
}

// ConfirmVerification validates a token and marks the account verified. The
// first confirmation wins; every outstanding token for the address is burned
// on success.
func (s *service) ConfirmVerification(ctx context.Context, emailAddr, token string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || token == "" {
		return ErrTokenInvalid
	}

	stored, err := s.repo.GetVerificationToken(ctx, emailAddr, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrTokenInvalid
		}
		return err
	}
	if stored.Expires.Before(time.Now()) {
		return ErrTokenInvalid
	}

	if err := s.repo.SetEmailVerified(ctx, emailAddr, time.Now()); err != nil {
		return err
	}
	return s.repo.DeleteVerificationTokens(ctx, emailAddr)
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func mapUser(record persistence.User) User {
	return User{
		ID:            record.ID,
		Email:         record.Email,
		Name:          record.Name,
		EmailVerified: record.EmailVerified,
	}
}

func newValidationError(fields map[string]string) error {
	fe := FieldErrors{}
	for key, message := range fields {
		fe.add(key, message)
	}
	return &ValidationError{Fields: fe}
}

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
