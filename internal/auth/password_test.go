package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Passw0rd!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash encoding: %s", hash)
	}
	if !VerifyPassword(hash, "Passw0rd!") {
		t.Fatalf("expected original password to verify")
	}
	if VerifyPassword(hash, "passw0rd!") {
		t.Fatalf("wrong password verified")
	}
	if VerifyPassword(hash, "") {
		t.Fatalf("empty password verified")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct salts to produce distinct hashes")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestVerifyPasswordMalformed(t *testing.T) {
	malformed := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=2,p=1$notbase64!$alsonot!",
		"$argon2id$v=19$m=65536,t=2,p=1$c2FsdA",
		"$argon2i$v=19$m=65536,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA",
	}
	for _, hash := range malformed {
		if VerifyPassword(hash, "anything") {
			t.Fatalf("malformed hash verified: %q", hash)
		}
	}
}

func TestVerifyPasswordHashesLongInput(t *testing.T) {
	// Refresh tokens exceed bcrypt's 72 byte cap; argon2 must not truncate.
	long := strings.Repeat("a", 200)
	hash, err := HashPassword(long)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, long) {
		t.Fatalf("long input did not verify")
	}
	if VerifyPassword(hash, long[:72]) {
		t.Fatalf("truncated input verified")
	}
}
