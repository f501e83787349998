package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TenantRecord represents a row in the tenants registry. The slug is referenced
// externally (URLs, webhooks) and is immutable once created.
type TenantRecord struct {
	ID        uuid.UUID `db:"id"`
	Slug      string    `db:"slug"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TenantStore provides access to the tenants table.
type TenantStore struct {
	pool *pgxpool.Pool
}

func NewTenantStore(pool *pgxpool.Pool) (*TenantStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &TenantStore{pool: pool}, nil
}

// CreateTenant inserts a tenant; a duplicated slug yields ErrConflict.
func (s *TenantStore) CreateTenant(ctx context.Context, slug, name string) (TenantRecord, error) {
	row := s.pool.QueryRow(ctx, `
        INSERT INTO tenants (slug, name)
        VALUES ($1, $2)
        RETURNING id, slug, name, created_at, updated_at
    `, slug, name)

	rec, err := scanTenant(row)
	if err != nil {
		if isUniqueViolation(err) {
			return TenantRecord{}, ErrConflict
		}
		return TenantRecord{}, err
	}

	return rec, nil
}

// GetTenantBySlug returns the tenant registered under slug.
func (s *TenantStore) GetTenantBySlug(ctx context.Context, slug string) (TenantRecord, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT id, slug, name, created_at, updated_at
        FROM tenants WHERE slug = $1
    `, slug)

	rec, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TenantRecord{}, ErrNotFound
		}
		return TenantRecord{}, err
	}

	return rec, nil
}

// ListTenants returns tenants ordered by creation time, newest first.
func (s *TenantStore) ListTenants(ctx context.Context, limit int) ([]TenantRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}

	rows, err := s.pool.Query(ctx, `
        SELECT id, slug, name, created_at, updated_at
        FROM tenants
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TenantRecord
	for rows.Next() {
		rec, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanTenant(row pgx.Row) (TenantRecord, error) {
	var rec TenantRecord
	if err := row.Scan(&rec.ID, &rec.Slug, &rec.Name, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return TenantRecord{}, err
	}
	return rec, nil
}
