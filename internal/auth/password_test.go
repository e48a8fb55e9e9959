// ABOUTME: Tests for password hashing and verification
// ABOUTME: Covers round-trips, fail-closed behavior on malformed hashes, and cost bounds

package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("pw123", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}
	if !CheckPassword("pw123", hash) {
		t.Error("correct password did not verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("wrong password verified")
	}
}

func TestHashPassword_NotReproducible(t *testing.T) {
	h1, err := HashPassword("pw123", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("pw123", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h1 == h2 {
		t.Error("expected salted hashes to differ")
	}
}

func TestHashPassword_CostOutOfRange(t *testing.T) {
	if _, err := HashPassword("pw", 99); err == nil {
		t.Error("expected error for cost 99")
	}
	if _, err := HashPassword("pw", 1); err == nil {
		t.Error("expected error for cost 1")
	}
}

func TestCheckPassword_FailsClosedOnMalformedHash(t *testing.T) {
	cases := []string{"", "not-a-hash", "$2a$truncated", "plaintext-password"}
	for _, hash := range cases {
		if CheckPassword("anything", hash) {
			t.Errorf("malformed hash %q verified", hash)
		}
	}
}
