package hash

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	// Low cost keeps the test fast; production uses DefaultCost.
	hashed, err := HashPasswordWithCost("correct horse battery staple", 4)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if !strings.HasPrefix(hashed, "$2a$") {
		t.Errorf("hash %q is not a bcrypt hash", hashed)
	}

	if !VerifyPassword("correct horse battery staple", hashed) {
		t.Error("verification failed for the correct password")
	}

	if VerifyPassword("wrong password", hashed) {
		t.Error("verification passed for the wrong password")
	}
}

func TestHashPasswordRejectsOverlongInput(t *testing.T) {
	// bcrypt reads at most 72 bytes of input.
	_, err := HashPasswordWithCost(strings.Repeat("a", 80), 4)
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}

	if _, err := HashPasswordWithCost(strings.Repeat("a", 72), 4); err != nil {
		t.Fatalf("72-byte password should hash cleanly: %v", err)
	}
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPasswordWithCost("samepassword", 4)
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPasswordWithCost("samepassword", 4)
	if err != nil {
		t.Fatal(err)
	}

	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plain text", "not-a-hash"},
		{"truncated", "$2a$12$tooshort"},
		{"wrong scheme", "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyPassword("anything", tt.hash) {
				t.Error("malformed hash verified successfully")
			}
		})
	}
}
