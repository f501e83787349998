package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User represents a row in the users table. PasswordHash never leaves the
// persistence and identity layers.
type User struct {
	ID            uuid.UUID  `db:"id"`
	Email         string     `db:"email"`
	Name          *string    `db:"name"`
	PasswordHash  *string    `db:"password_hash"`
	EmailVerified *time.Time `db:"email_verified"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// UserStore exposes persistence helpers for the users table.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) (*UserStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &UserStore{pool: pool}, nil
}

// CreateUserParams captures the fields required to insert a new user record.
type CreateUserParams struct {
	Email        string
	Name         *string
	PasswordHash *string
}

// CreateUser inserts a new user and returns the persisted record.
func (s *UserStore) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	row := s.pool.QueryRow(ctx, `
        INSERT INTO users (email, name, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, email, name, password_hash, email_verified, created_at, updated_at
    `,
		strings.ToLower(strings.TrimSpace(params.Email)),
		params.Name,
		params.PasswordHash,
	)

	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrConflict
		}
		return User{}, err
	}

	return user, nil
}

// GetUserByEmail returns the user with the given email, matched case-insensitively.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT id, email, name, password_hash, email_verified, created_at, updated_at
        FROM users WHERE LOWER(email) = LOWER($1)
    `, strings.TrimSpace(email))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

// GetUser returns a single user by identifier.
func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT id, email, name, password_hash, email_verified, created_at, updated_at
        FROM users WHERE id = $1
    `, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}

	return user, nil
}

// SetEmailVerified marks the user's email as verified. The timestamp is set
// exactly once; verifying an already-verified user leaves the original value.
func (s *UserStore) SetEmailVerified(ctx context.Context, email string, verifiedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
        UPDATE users
        SET email_verified = COALESCE(email_verified, $2), updated_at = NOW()
        WHERE LOWER(email) = LOWER($1)
    `, strings.TrimSpace(email), verifiedAt)
	return err
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.EmailVerified, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, err
	}
	return user, nil
}
