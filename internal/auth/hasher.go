package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt with a fixed work factor. bcrypt embeds a
// random salt in every hash, so hashing the same password twice yields two
// different strings that both verify.
type PasswordHasher struct {
	Cost int
}

// NewPasswordHasher returns a hasher with the given cost, clamped to the
// range bcrypt accepts. Cost 10 is the baseline; raising it makes brute
// force proportionally more expensive.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{Cost: cost}
}

// Hash returns the bcrypt hash of plain. Not idempotent: each call salts
// anew.
func (p PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), p.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A malformed hash simply yields
// false rather than an error, so callers cannot tell a bad password from a
// corrupt record.
func (p PasswordHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
