package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}
	if !h.Verify("correct horse battery staple", hash) {
		t.Fatal("Verify rejected the original password")
	}
	if h.Verify("correct horse battery stable", hash) {
		t.Fatal("Verify accepted a different password")
	}
}

func TestHash_SaltsEveryCall(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	h1, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password are identical, salt missing")
	}
	if !h.Verify("secret", h1) || !h.Verify("secret", h2) {
		t.Fatal("both hashes must verify against the original password")
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	if h.Verify("anything", "not-a-bcrypt-hash") {
		t.Fatal("Verify accepted a malformed hash")
	}
	if h.Verify("anything", "") {
		t.Fatal("Verify accepted an empty hash")
	}
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	t.Parallel()

	if got := NewPasswordHasher(-1).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want default %d", got, bcrypt.DefaultCost)
	}
	if got := NewPasswordHasher(99).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want default %d", got, bcrypt.DefaultCost)
	}
	if got := NewPasswordHasher(10).Cost; got != 10 {
		t.Fatalf("cost = %d, want 10", got)
	}
}
