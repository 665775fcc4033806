package security

import (
	"encoding/hex"
	"testing"
)

func TestHashWithSaltDeterministic(t *testing.T) {
	password := "correct horse battery staple"
	salt := "aabbccddeeff00112233445566778899"

	first := HashWithSalt(password, salt)
	second := HashWithSalt(password, salt)

	if first != second {
		t.Fatalf("HashWithSalt not deterministic: %s != %s", first, second)
	}

	if _, err := hex.DecodeString(first); err != nil {
		t.Fatalf("hash is not hex-encoded: %v", err)
	}
}

func TestHashPasswordFreshSalts(t *testing.T) {
	password := "correct horse battery staple"

	hash1, salt1, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	hash2, salt2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if salt1 == salt2 {
		t.Fatal("HashPassword reused a salt")
	}
	if hash1 == hash2 {
		t.Fatal("HashPassword produced linkable hashes for distinct salts")
	}
	if len(salt1) != saltLength*2 {
		t.Fatalf("unexpected salt length: %d", len(salt1))
	}
}

func TestVerifyPasswordRoundTrip(t *testing.T) {
	password := "Tr0ub4dor&3"

	hash, salt, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !VerifyPassword(password, hash, salt) {
		t.Fatal("VerifyPassword returned false for correct password")
	}

	if VerifyPassword("wrong password", hash, salt) {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordEmptyInputs(t *testing.T) {
	// Hashing empty strings is legal input and must behave
	// deterministically rather than error.
	hash := HashWithSalt("", "")
	if !VerifyPassword("", hash, "") {
		t.Fatal("VerifyPassword should round-trip the empty password")
	}
	if VerifyPassword("nonempty", hash, "") {
		t.Fatal("VerifyPassword matched a different password")
	}
}
