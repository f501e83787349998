package auth

import (
	"github.com/alexedwards/argon2id"
)

// Hasher wraps argon2id hashing behind a bounded concurrency gate so the
// intentionally expensive key derivation cannot starve latency-sensitive
// handlers sharing the process.
type Hasher struct {
	params *argon2id.Params
	sem    chan struct{}
}

// NewHasher builds a Hasher allowing at most maxConcurrent simultaneous
// derivations (minimum 1).
func NewHasher(maxConcurrent int) *Hasher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Hasher{
		params: argon2id.DefaultParams,
		sem:    make(chan struct{}, maxConcurrent),
	}
}

// Hash derives a salted argon2id PHC string for the secret.
func (h *Hasher) Hash(secret string) (string, error) {
	h.sem <- struct{}{}
	defer func() { <-h.sem }()

	return argon2id.CreateHash(secret, h.params)
}

// Verify reports whether candidate matches storedHash. A malformed stored hash
// and a plain mismatch are both reported as false; callers must not be able to
// tell them apart.
func (h *Hasher) Verify(storedHash, candidate string) bool {
	h.sem <- struct{}{}
	defer func() { <-h.sem }()

	match, err := argon2id.ComparePasswordAndHash(candidate, storedHash)
	if err != nil {
		return false
	}
	return match
}
