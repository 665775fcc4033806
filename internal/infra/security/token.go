package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

var (
	// ErrSigningUnavailable indicates no signing secret is configured.
	ErrSigningUnavailable = errors.New("token: signing secret unavailable")
	// ErrTokenMalformed indicates the token could not be parsed at all.
	ErrTokenMalformed = errors.New("token: malformed")
	// ErrTokenSignature indicates the token signature did not validate.
	ErrTokenSignature = errors.New("token: invalid signature")
	// ErrTokenExpired indicates the token expired and the client must
	// re-authenticate.
	ErrTokenExpired = errors.New("token: expired")
)

// SessionClaims is the claim set embedded in a session token.
type SessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited session tokens.
// Tokens are stateless; there is no server-side revocation list, so the
// lifetime is kept short (one hour by default).
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService signing with the provided
// symmetric secret.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	if now != nil {
		s.now = now
	}
	return s
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue builds and signs a token carrying the identity and role claims.
func (s *TokenService) Issue(email, role string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSigningUnavailable
	}

	now := s.now().UTC()
	claims := SessionClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify cryptographically validates the token and returns its claims.
// Expiry is re-validated here regardless of what any earlier decode step
// may have concluded; tokens without an exp claim are rejected outright.
func (s *TokenService) Verify(token string) (*SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenMalformed
	}
	if len(s.secret) == 0 {
		return nil, ErrSigningUnavailable
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenSignature
		}
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenSignature
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return nil, ErrTokenExpired
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
