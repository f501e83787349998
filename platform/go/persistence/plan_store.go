package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Plan represents a row in the plans catalog.
type Plan struct {
	ID        uuid.UUID `db:"id"`
	Key       string    `db:"key"`
	Name      string    `db:"name"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PlanFeature is a feature switch/limit attached to a plan.
type PlanFeature struct {
	ID        uuid.UUID      `db:"id"`
	PlanID    uuid.UUID      `db:"plan_id"`
	Key       string         `db:"key"`
	Enabled   bool           `db:"enabled"`
	HardLimit *int           `db:"hard_limit"`
	SoftLimit *int           `db:"soft_limit"`
	Metadata  map[string]any `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

// PlanStore provides access to plans and plan features.
type PlanStore struct {
	pool *pgxpool.Pool
}

func NewPlanStore(pool *pgxpool.Pool) (*PlanStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &PlanStore{pool: pool}, nil
}

// ListPlans returns the full catalog.
func (s *PlanStore) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT id, key, name, active, created_at, updated_at
        FROM plans
        ORDER BY key ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Key, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

// UpsertMissingPlan inserts a plan by key if absent; existing plans are left
// untouched. Returns true when a row was inserted.
func (s *PlanStore) UpsertMissingPlan(ctx context.Context, key, name string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
        INSERT INTO plans (key, name, active)
        VALUES ($1, $2, TRUE)
        ON CONFLICT (key) DO NOTHING
    `, key, name)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListPlanFeatures returns features, optionally filtered by plan.
func (s *PlanStore) ListPlanFeatures(ctx context.Context, planID *uuid.UUID) ([]PlanFeature, error) {
	query := `
        SELECT id, plan_id, key, enabled, hard_limit, soft_limit, metadata, created_at
        FROM plan_features
    `
	var args []any
	if planID != nil {
		query += " WHERE plan_id = $1"
		args = append(args, *planID)
	}
	query += " ORDER BY key ASC LIMIT 500"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []PlanFeature
	for rows.Next() {
		f, err := scanPlanFeature(rows)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}

	return features, rows.Err()
}

// CreatePlanFeatureParams captures the insertable feature fields.
type CreatePlanFeatureParams struct {
	PlanID    uuid.UUID
	Key       string
	Enabled   bool
	HardLimit *int
	SoftLimit *int
	Metadata  map[string]any
}

// CreatePlanFeature inserts a feature row for a plan.
func (s *PlanStore) CreatePlanFeature(ctx context.Context, params CreatePlanFeatureParams) (PlanFeature, error) {
	metadata := params.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	row := s.pool.QueryRow(ctx, `
        INSERT INTO plan_features (plan_id, key, enabled, hard_limit, soft_limit, metadata)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, plan_id, key, enabled, hard_limit, soft_limit, metadata, created_at
    `, params.PlanID, params.Key, params.Enabled, params.HardLimit, params.SoftLimit, metadata)

	return scanPlanFeature(row)
}

func scanPlanFeature(row pgx.Row) (PlanFeature, error) {
	var f PlanFeature
	if err := row.Scan(&f.ID, &f.PlanID, &f.Key, &f.Enabled, &f.HardLimit, &f.SoftLimit, &f.Metadata, &f.CreatedAt); err != nil {
		return PlanFeature{}, err
	}
	return f, nil
}
