package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	iss := NewTokenIssuer("super-secret", 60)

	tok, exp, err := iss.Issue("user-123", "a@b.com", "user")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry %v is not in the future", exp)
	}

	claims, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Fatalf("sub = %q, want %q", claims.Subject, "user-123")
	}
	if claims.Email != "a@b.com" {
		t.Fatalf("email = %q, want %q", claims.Email, "a@b.com")
	}
	if claims.Role != "user" {
		t.Fatalf("role = %q, want %q", claims.Role, "user")
	}

	p := claims.Principal()
	if p.ID != "user-123" || p.Email != "a@b.com" || p.Role != "user" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	iss := NewTokenIssuer("secret", -1) // already expired when issued

	tok, _, err := iss.Issue("u1", "u1@example.com", "admin")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = iss.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenIssuer("right-secret", 60).Issue("u2", "u2@example.com", "user")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewTokenIssuer("wrong-secret", 60).Verify(tok)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	iss := NewTokenIssuer("k", 60)
	for _, raw := range []string{"", "garbage", "not.a.jwt"} {
		if _, err := iss.Verify(raw); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("Verify(%q) err = %v, want ErrTokenMalformed", raw, err)
		}
	}
}
