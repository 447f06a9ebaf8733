package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

const secretPepper = "season salt"

// GenerateSecret returns a new client secret: the hex SHA-256 digest of a
// fresh UUID and a fixed pepper. Secrets are stored as-is and compared
// byte-for-byte on client authentication.
func GenerateSecret() string {
	sum := sha256.New()
	sum.Write([]byte(uuid.NewString()))
	sum.Write([]byte(secretPepper))
	return hex.EncodeToString(sum.Sum(nil))
}
