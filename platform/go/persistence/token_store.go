package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerificationToken is a single-use, time-boxed capability: possession of the
// exact token string is the sole authorization for confirming the identifier.
type VerificationToken struct {
	Identifier string    `db:"identifier"`
	Token      string    `db:"token"`
	Expires    time.Time `db:"expires"`
}

// TokenStore exposes persistence helpers for verification tokens.
type TokenStore struct {
	pool *pgxpool.Pool
}

func NewTokenStore(pool *pgxpool.Pool) (*TokenStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &TokenStore{pool: pool}, nil
}

// InsertToken stores a token for the identifier. Insert-ignore semantics:
// issuing a second token does not invalidate an earlier unexpired one.
func (s *TokenStore) InsertToken(ctx context.Context, identifier, token string, expires time.Time) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO verification_tokens (identifier, token, expires)
        VALUES ($1, $2, $3)
        ON CONFLICT DO NOTHING
    `, normalizeIdentifier(identifier), token, expires)
	return err
}

// GetToken looks up the exact (identifier, token) pair.
func (s *TokenStore) GetToken(ctx context.Context, identifier, token string) (VerificationToken, error) {
	row := s.pool.QueryRow(ctx, `
        SELECT identifier, token, expires
        FROM verification_tokens
        WHERE identifier = $1 AND token = $2
    `, normalizeIdentifier(identifier), token)

	var rec VerificationToken
	if err := row.Scan(&rec.Identifier, &rec.Token, &rec.Expires); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VerificationToken{}, ErrNotFound
		}
		return VerificationToken{}, err
	}

	return rec, nil
}

// DeleteTokens removes every token row for the identifier, closing any other
// outstanding pending tokens alongside the consumed one.
func (s *TokenStore) DeleteTokens(ctx context.Context, identifier string) error {
	_, err := s.pool.Exec(ctx, `
        DELETE FROM verification_tokens WHERE identifier = $1
    `, normalizeIdentifier(identifier))
	return err
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
