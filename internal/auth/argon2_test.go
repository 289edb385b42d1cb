package auth

import (
	"encoding/base64"
	"strings"
	"testing"
)

// testParams keep the suite fast; format tests use the real presets.
var testParams = Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32}

func TestHasher_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		hasher *Hasher
		want   string
	}{
		{"default", NewHasher(DefaultParams), "m=65536,t=3,p=4"},
		{"compat", NewFixedSaltHasher(CompatParams, []byte("somesaltsomesalt")), "m=19456,t=2,p=1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash, err := tt.hasher.Hash("password123")
			if err != nil {
				t.Fatalf("Hash failed: %v", err)
			}

			parts := strings.Split(hash, "$")
			if len(parts) != 6 {
				t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
			}
			if parts[1] != "argon2id" {
				t.Errorf("Expected argon2id algorithm, got: %s", parts[1])
			}
			if parts[2] != "v=19" {
				t.Errorf("Expected v=19, got: %s", parts[2])
			}
			if parts[3] != tt.want {
				t.Errorf("Expected %s, got: %s", tt.want, parts[3])
			}
		})
	}
}

func TestHasher_RandomSaltUniqueness(t *testing.T) {
	t.Parallel()

	h := NewHasher(testParams)

	hash1, err := h.Hash("the_same_password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := h.Hash("the_same_password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	match1, _ := h.Verify("the_same_password", hash1)
	match2, _ := h.Verify("the_same_password", hash2)
	if !match1 || !match2 {
		t.Error("Both hashes should verify correctly")
	}
}

func TestHasher_FixedSaltIsDeterministic(t *testing.T) {
	t.Parallel()

	salt := []byte("somesaltsomesalt")
	h := NewFixedSaltHasher(testParams, salt)

	hash1, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	if hash1 != hash2 {
		t.Error("Fixed salt should produce identical hashes")
	}

	parts := strings.Split(hash1, "$")
	if parts[4] != base64.RawStdEncoding.EncodeToString(salt) {
		t.Errorf("Salt segment = %q, want encoded fixed salt", parts[4])
	}
}

func TestHasher_FixedSaltIsCopied(t *testing.T) {
	t.Parallel()

	salt := []byte("somesaltsomesalt")
	h := NewFixedSaltHasher(testParams, salt)
	before, _ := h.Hash("password123")

	salt[0] = 'X'
	after, _ := h.Hash("password123")

	if before != after {
		t.Error("Mutating the caller's slice should not change the hasher")
	}
}

func TestVerifyPassword_Correct(t *testing.T) {
	t.Parallel()

	hash, err := NewHasher(testParams).Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := VerifyPassword("password123", hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !match {
		t.Error("Correct password should match")
	}
}

func TestVerifyPassword_Incorrect(t *testing.T) {
	t.Parallel()

	hash, err := NewHasher(testParams).Hash("password123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := VerifyPassword("password124", hash)
	if err != nil {
		t.Fatalf("VerifyPassword should not return error for wrong password: %v", err)
	}
	if match {
		t.Error("Wrong password should not match")
	}
}

func TestVerifyPassword_AcrossParams(t *testing.T) {
	t.Parallel()

	// A hash written under the shared-salt preset verifies through a
	// random-salt hasher, and the other way around.
	compat := NewFixedSaltHasher(testParams, []byte("somesaltsomesalt"))
	random := NewHasher(Params{Time: 2, Memory: 4 * 1024, Threads: 2, KeyLen: 16})

	oldHash, _ := compat.Hash("password123")
	newHash, _ := random.Hash("password123")

	if ok, err := random.Verify("password123", oldHash); err != nil || !ok {
		t.Errorf("random hasher should verify compat hash: ok=%v err=%v", ok, err)
	}
	if ok, err := compat.Verify("password123", newHash); err != nil || !ok {
		t.Errorf("compat hasher should verify random hash: ok=%v err=%v", ok, err)
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong format", "not-a-hash", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$salt$hash", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"wrong part count", "$argon2id$v=19", ErrInvalidHash},
		{"bad params", "$argon2id$v=19$m=x,t=3,p=4$c2FsdA$aGFzaA", ErrInvalidHash},
		{"bad salt encoding", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA", ErrInvalidHash},
		{"empty digest", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$", ErrInvalidHash},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := VerifyPassword("password", tt.hash)
			if err != tt.wantErr {
				t.Errorf("VerifyPassword with %q error = %v, want %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestVerifyPassword_WrongVersion(t *testing.T) {
	t.Parallel()

	invalidVersionHash := "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl"

	match, err := VerifyPassword("password", invalidVersionHash)
	if err != ErrIncompatibleVersion {
		t.Errorf("Expected ErrIncompatibleVersion, got: %v", err)
	}
	if match {
		t.Error("Should not match with incompatible version")
	}
}

func TestQuickHash(t *testing.T) {
	t.Parallel()

	if QuickHash("token-one") != QuickHash("token-one") {
		t.Error("Same input should produce same hash")
	}
	if QuickHash("token-one") == QuickHash("token-two") {
		t.Error("Different input should produce different hash")
	}
	if got := len(QuickHash(strings.Repeat("x", 1000))); got != 32 {
		t.Errorf("Hash should be 32 chars, got: %d", got)
	}
}
