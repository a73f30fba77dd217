package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures, from most to least specific. All of them surface to
// clients as a generic 401; the split exists for logging and tests.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Claims is the payload embedded in every access token. The user ID rides in
// the registered subject claim; email and role are custom claims so the guard
// can rebuild the principal without a database round-trip.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated identity attached to one in-flight request.
// It is built from a verified token, lives in the request context, and is
// discarded when the request ends.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Principal converts verified claims into the request-scoped identity.
func (c *Claims) Principal() Principal {
	return Principal{ID: c.Subject, Email: c.Email, Role: c.Role}
}

// TokenIssuer creates and verifies HS256 JWTs with a process-wide secret and
// a fixed TTL. Verification is pure: signature check plus expiry comparison,
// no lookups, so concurrent requests never contend here.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer builds an issuer from the configured signing secret and a
// TTL in minutes.
func NewTokenIssuer(secret string, ttlMin int) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: time.Duration(ttlMin) * time.Minute}
}

// Issue signs a token for the given identity and returns it with its expiry.
func (t *TokenIssuer) Issue(userID, email, role string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(t.ttl)
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates raw, returning the embedded claims. The error
// is always one of ErrTokenExpired, ErrTokenMalformed or ErrTokenInvalid; an
// expired token is reported as expired even though it is also invalid.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tk *jwt.Token) (interface{}, error) {
		// Only HMAC is ever used for signing; reject anything else outright.
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return t.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
