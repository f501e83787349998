package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	sqlassets "github.com/odontox-io/odontox/database"
)

// ApplySchema applies the embedded DDL. Statements are idempotent so this is
// safe to run on every startup.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, sqlassets.AdminSQL); err != nil {
		return fmt.Errorf("apply shared schema: %w", err)
	}
	if _, err := pool.Exec(ctx, sqlassets.TenantSQL); err != nil {
		return fmt.Errorf("apply tenant schema: %w", err)
	}
	return nil
}
