package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txBeginner exposes the minimal pgx pool behaviour needed by TenantDB.
type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TenantDB is the single gateway to tenant-scoped tables. Every unit of work
// runs inside its own transaction with the app.tenant_id setting bound
// transaction-locally, so the row-level security policies see exactly one
// tenant and the setting can never leak to another request sharing a pooled
// connection: it is discarded at COMMIT or ROLLBACK on every exit path.
type TenantDB struct {
	pool txBeginner
}

func NewTenantDB(pool *pgxpool.Pool) *TenantDB {
	if pool == nil {
		panic("TenantDB requires pool")
	}
	return &TenantDB{pool: pool}
}

// WithTenant executes fn inside a transaction scoped to tenantID. Rows of
// other tenants are neither observable nor mutable within fn.
func (db *TenantDB) WithTenant(ctx context.Context, tenantID uuid.UUID, fn func(tx pgx.Tx) error) error {
	if tenantID == uuid.Nil {
		return errors.New("tenant id is required")
	}

	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Third argument true makes the setting transaction-local.
	if _, err := tx.Exec(ctx, `SELECT set_config('app.tenant_id', $1, true)`, tenantID.String()); err != nil {
		return fmt.Errorf("bind tenant scope: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// WithAdmin executes fn inside a transaction with no tenant binding. Only the
// shared tables are usable here; tenant-scoped tables appear empty because the
// isolation policies match nothing without app.tenant_id.
func (db *TenantDB) WithAdmin(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
