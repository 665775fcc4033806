package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const saltLength = 16

// GenerateSalt returns a fresh random salt, hex-encoded.
func GenerateSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword generates a fresh salt and hashes the password with it.
// The hash is HMAC-SHA256 keyed by the salt, hex-encoded, so the same
// password hashed twice yields unlinkable results.
func HashPassword(password string) (hash, salt string, err error) {
	salt, err = GenerateSalt()
	if err != nil {
		return "", "", err
	}
	return HashWithSalt(password, salt), salt, nil
}

// HashWithSalt deterministically re-derives the hash for a password and a
// known salt. Empty or malformed inputs are legal and produce a
// deterministic result; password strength is the caller's policy.
func HashWithSalt(password, salt string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPassword reports whether the password matches the stored hash+salt
// pair. The comparison is constant-time.
func VerifyPassword(password, storedHash, salt string) bool {
	computed := HashWithSalt(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
