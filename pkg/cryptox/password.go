// Package cryptox holds the crypto primitives the OAuth2 core depends on:
// deterministic salted password hashing, reversible encryption for redirect
// state, and client secret generation.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 4096
	hashKeyLength  = 32
)

// PasswordHasher produces deterministic salted password hashes. The salt is
// process-wide and static, so the same password always hashes to the same
// value and credential lookups can filter on the stored hash directly.
type PasswordHasher struct {
	salt []byte
}

func NewPasswordHasher(salt string) *PasswordHasher {
	return &PasswordHasher{salt: []byte(salt)}
}

// Hash derives a hex-encoded PBKDF2-SHA256 digest of password under the
// static salt.
func (h *PasswordHasher) Hash(password string) string {
	key := pbkdf2.Key([]byte(password), h.salt, hashIterations, hashKeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// Verify reports whether password hashes to encoded under the active salt.
func (h *PasswordHasher) Verify(password, encoded string) bool {
	computed := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(encoded)) == 1
}
