package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Shared persistence sentinels. ErrNotFound covers both "row absent" and "row
// belongs to another tenant": under row-level security the two are the same
// empty result, and callers must not be able to tell them apart.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflict")
)

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
