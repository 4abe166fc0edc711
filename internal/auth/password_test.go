package auth

import (
	"strings"
	"testing"
)

// cheapParams keeps hashing fast in tests.
var cheapParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Fatalf("HashPassword = %q, want default argon2id prefix", hash)
	}
}

func TestCheckPassword_Correct(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("changeme", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !valid {
		t.Fatal("Correct password was rejected")
	}
}

func TestCheckPassword_Wrong(t *testing.T) {
	hash, err := HashPasswordWithParams("changeme", cheapParams)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	valid, err := CheckPassword("wrongpassword", hash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if valid {
		t.Fatal("Wrong password was accepted")
	}
}

func TestCheckPassword_UniqueSalts(t *testing.T) {
	a, _ := HashPasswordWithParams("same", cheapParams)
	b, _ := HashPasswordWithParams("same", cheapParams)
	if a == b {
		t.Fatal("two hashes of the same password are identical; salt not random")
	}
}

func TestCheckPassword_InvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"bcrypt", "$2a$10$abcdefghijklmnopqrstuv"},
		{"wrong type", "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, err := CheckPassword("pw", tt.hash)
			if err == nil {
				t.Error("expected error")
			}
			if valid {
				t.Error("invalid hash must never validate")
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	current, _ := HashPassword("pw")
	if NeedsRehash(current) {
		t.Error("hash with default params should not need rehash")
	}

	old, _ := HashPasswordWithParams("pw", cheapParams)
	if !NeedsRehash(old) {
		t.Error("hash with cheaper params should need rehash")
	}

	if !NeedsRehash("garbage") {
		t.Error("unparseable hash should need rehash")
	}
}
