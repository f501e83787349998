package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Membership associates one user with one tenant and exactly one role.
// Uniqueness on (tenant_id, user_id) is enforced by the table's primary key.
type Membership struct {
	TenantID   uuid.UUID `db:"tenant_id"`
	UserID     uuid.UUID `db:"user_id"`
	Role       string    `db:"role"`
	TenantSlug string    `db:"slug"`
}

// MembershipStore exposes persistence helpers for the org_members table.
type MembershipStore struct {
	pool *pgxpool.Pool
}

func NewMembershipStore(pool *pgxpool.Pool) (*MembershipStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &MembershipStore{pool: pool}, nil
}

// CreateMembership inserts the (tenant, user, role) binding.
func (s *MembershipStore) CreateMembership(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO org_members (tenant_id, user_id, role)
        VALUES ($1, $2, $3)
    `, tenantID, userID, role)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// ListMembershipsByUser returns the user's memberships with their tenant slug,
// ordered deterministically by slug so callers never depend on scan order.
func (s *MembershipStore) ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT m.tenant_id, m.user_id, m.role, t.slug
        FROM org_members m
        JOIN tenants t ON t.id = m.tenant_id
        WHERE m.user_id = $1
        ORDER BY t.slug ASC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.TenantID, &m.UserID, &m.Role, &m.TenantSlug); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}

	return memberships, rows.Err()
}
