package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/persistence"
)

// MemoryRepository is an in-memory Repository used by tests. It keeps the
// same write semantics as the backing stores: user emails are unique, the
// verified timestamp is set exactly once, token inserts are insert-ignore and
// token deletion removes every row for the identifier.
type MemoryRepository struct {
	mu          sync.Mutex
	users       map[string]persistence.User
	memberships []persistence.Membership
	tenants     map[string]persistence.TenantRecord
	tokens      []persistence.VerificationToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:   map[string]persistence.User{},
		tenants: map[string]persistence.TenantRecord{},
	}
}

// AddTenant seeds an organization for signup tests.
func (m *MemoryRepository) AddTenant(slug, name string) persistence.TenantRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	rec := persistence.TenantRecord{ID: uuid.New(), Slug: slug, Name: name, CreatedAt: now, UpdatedAt: now}
	m.tenants[slug] = rec
	return rec
}

// TokensFor returns the stored token rows for the identifier.
func (m *MemoryRepository) TokensFor(identifier string) []persistence.VerificationToken {
	m.mu.Lock()
	defer m.mu.Unlock()

	identifier = normalizeIdentifier(identifier)
	var out []persistence.VerificationToken
	for _, tok := range m.tokens {
		if tok.Identifier == identifier {
			out = append(out, tok)
		}
	}
	return out
}

func (m *MemoryRepository) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.users[normalizeIdentifier(email)]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return rec, nil
}

func (m *MemoryRepository) CreateUser(_ context.Context, params persistence.CreateUserParams) (persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalizeIdentifier(params.Email)
	if _, exists := m.users[key]; exists {
		return persistence.User{}, persistence.ErrConflict
	}

	now := time.Now()
	rec := persistence.User{
		ID:           uuid.New(),
		Email:        key,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.users[key] = rec
	return rec, nil
}

func (m *MemoryRepository) SetEmailVerified(_ context.Context, email string, verifiedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalizeIdentifier(email)
	rec, ok := m.users[key]
	if !ok {
		return nil
	}
	if rec.EmailVerified == nil {
		rec.EmailVerified = &verifiedAt
		m.users[key] = rec
	}
	return nil
}

func (m *MemoryRepository) ListMemberships(_ context.Context, userID uuid.UUID) ([]persistence.Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []persistence.Membership
	for _, membership := range m.memberships {
		if membership.UserID == userID {
			out = append(out, membership)
		}
	}
	return out, nil
}

func (m *MemoryRepository) CreateMembership(_ context.Context, tenantID, userID uuid.UUID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slug := ""
	for _, tenantRec := range m.tenants {
		if tenantRec.ID == tenantID {
			slug = tenantRec.Slug
			break
		}
	}
	m.memberships = append(m.memberships, persistence.Membership{
		TenantID:   tenantID,
		UserID:     userID,
		Role:       role,
		TenantSlug: slug,
	})
	return nil
}

func (m *MemoryRepository) GetTenantBySlug(_ context.Context, slug string) (persistence.TenantRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tenants[slug]
	if !ok {
		return persistence.TenantRecord{}, persistence.ErrNotFound
	}
	return rec, nil
}

func (m *MemoryRepository) InsertVerificationToken(_ context.Context, identifier, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	identifier = normalizeIdentifier(identifier)
	for _, tok := range m.tokens {
		if tok.Identifier == identifier && tok.Token == token {
			return nil
		}
	}
	m.tokens = append(m.tokens, persistence.VerificationToken{
		Identifier: identifier,
		Token:      token,
		Expires:    expires,
	})
	return nil
}

func (m *MemoryRepository) GetVerificationToken(_ context.Context, identifier, token string) (persistence.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	identifier = normalizeIdentifier(identifier)
	for _, tok := range m.tokens {
		if tok.Identifier == identifier && tok.Token == token {
			return tok, nil
		}
	}
	return persistence.VerificationToken{}, persistence.ErrNotFound
}

func (m *MemoryRepository) DeleteVerificationTokens(_ context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	identifier = normalizeIdentifier(identifier)
	kept := m.tokens[:0]
	for _, tok := range m.tokens {
		if tok.Identifier != identifier {
			kept = append(kept, tok)
		}
	}
	m.tokens = kept
	return nil
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
