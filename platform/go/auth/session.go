package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/odontox-io/odontox/platform/go/authz"
)

// ErrInvalidSession covers every session validation failure: bad signature,
// expired token, malformed claims. Callers get one error kind on purpose.
var ErrInvalidSession = errors.New("invalid session")

// sessionClaims is the wire shape of a session token.
type sessionClaims struct {
	TenantID string `json:"tid"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and validates session tokens. Issuing is a pure function
// of the claims, the signing key and the clock; nothing is persisted.
type SessionIssuer struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
}

// NewSessionIssuer builds an issuer from the process-wide signing key.
func NewSessionIssuer(signingKey string, ttl time.Duration) (*SessionIssuer, error) {
	if signingKey == "" {
		return nil, errors.New("session signing key is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionIssuer{signingKey: []byte(signingKey), ttl: ttl, issuer: "odontox"}, nil
}

// Issue signs a token carrying the claims triple with the configured expiry.
func (s *SessionIssuer) Issue(claims Claims, now time.Time) (string, error) {
	wire := sessionClaims{
		TenantID: claims.TenantID.String(),
		Role:     string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.PrincipalID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wire)
	return token.SignedString(s.signingKey)
}

// Validate verifies signature and expiry and extracts the claims triple.
// Claims are taken from the token as-is; role or tenant changes after issuance
// do not take effect until re-authentication.
func (s *SessionIssuer) Validate(tokenStr string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidSession
	}

	wire, ok := parsed.Claims.(*sessionClaims)
	if !ok {
		return Claims{}, ErrInvalidSession
	}

	principalID, err := uuid.Parse(wire.Subject)
	if err != nil {
		return Claims{}, ErrInvalidSession
	}

	tenantID, err := uuid.Parse(wire.TenantID)
	if err != nil {
		return Claims{}, ErrInvalidSession
	}

	role, ok := authz.ParseRole(wire.Role)
	if !ok {
		return Claims{}, ErrInvalidSession
	}

	return Claims{PrincipalID: principalID, TenantID: tenantID, Role: role}, nil
}

// SessionTTL exposes the configured session lifetime.
func (s *SessionIssuer) SessionTTL() time.Duration {
	return s.ttl
}
