package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/persistence"
)

// Repository defines the persistence operations required by the identity service.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (persistence.User, error)
	CreateUser(ctx context.Context, params persistence.CreateUserParams) (persistence.User, error)
	SetEmailVerified(ctx context.Context, email string, verifiedAt time.Time) error

	ListMemberships(ctx context.Context, userID uuid.UUID) ([]persistence.Membership, error)
	CreateMembership(ctx context.Context, tenantID, userID uuid.UUID, role string) error

	GetTenantBySlug(ctx context.Context, slug string) (persistence.TenantRecord, error)

	InsertVerificationToken(ctx context.Context, identifier, token string, expires time.Time) error
	GetVerificationToken(ctx context.Context, identifier, token string) (persistence.VerificationToken, error)
	DeleteVerificationTokens(ctx context.Context, identifier string) error
}

type postgresRepository struct {
	users       *persistence.UserStore
	memberships *persistence.MembershipStore
	tenants     *persistence.TenantStore
	tokens      *persistence.TokenStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(
	users *persistence.UserStore,
	memberships *persistence.MembershipStore,
	tenants *persistence.TenantStore,
	tokens *persistence.TokenStore,
) Repository {
	if users == nil || memberships == nil || tenants == nil || tokens == nil {
		panic("identity repository requires all stores")
	}
	return &postgresRepository{users: users, memberships: memberships, tenants: tenants, tokens: tokens}
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	return r.users.GetUserByEmail(ctx, email)
}

func (r *postgresRepository) CreateUser(ctx context.Context, params persistence.CreateUserParams) (persistence.User, error) {
	return r.users.CreateUser(ctx, params)
}

func (r *postgresRepository) SetEmailVerified(ctx context.Context, email string, verifiedAt time.Time) error {
	return r.users.SetEmailVerified(ctx, email, verifiedAt)
}

func (r *postgresRepository) ListMemberships(ctx context.Context, userID uuid.UUID) ([]persistence.Membership, error) {
	return r.memberships.ListMembershipsByUser(ctx, userID)
}

func (r *postgresRepository) CreateMembership(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	return r.memberships.CreateMembership(ctx, tenantID, userID, role)
}

func (r *postgresRepository) GetTenantBySlug(ctx context.Context, slug string) (persistence.TenantRecord, error) {
	return r.tenants.GetTenantBySlug(ctx, slug)
}

func (r *postgresRepository) InsertVerificationToken(ctx context.Context, identifier, token string, expires time.Time) error {
	return r.tokens.InsertToken(ctx, identifier, token, expires)
}

func (r *postgresRepository) GetVerificationToken(ctx context.Context, identifier, token string) (persistence.VerificationToken, error) {
	return r.tokens.GetToken(ctx, identifier, token)
}

func (r *postgresRepository) DeleteVerificationTokens(ctx context.Context, identifier string) error {
	return r.tokens.DeleteTokens(ctx, identifier)
}
