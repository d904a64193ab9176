package utils

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}
	if hash == "" || hash == "secret123" {
		t.Fatalf("expected a real hash, got %q", hash)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}

	other, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}
	if other == hash {
		t.Error("expected salted hashes to differ between calls")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	if !CheckPassword("secret123", hash) {
		t.Error("expected the right password to verify")
	}
	if CheckPassword("wrong-password", hash) {
		t.Error("expected a wrong password to fail")
	}
	if CheckPassword("secret123", "not-a-hash") {
		t.Error("expected a malformed hash to fail")
	}
}
