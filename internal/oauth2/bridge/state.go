package bridge

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/grantstore/pkg/cryptox"
)

// StateCodec packs resource-owner credentials into the opaque state value
// that rides the authorization redirect and unpacks it on the way back. The
// value is encrypted and authenticated, so a tampered state fails to decode
// rather than smuggling altered credentials.
type StateCodec struct {
	cipher *cryptox.Cipher
}

func NewStateCodec(cipher *cryptox.Cipher) *StateCodec {
	return &StateCodec{cipher: cipher}
}

// Encode seals username and password into a redirect-safe state value.
func (c *StateCodec) Encode(username, password string) (string, error) {
	return c.cipher.Encrypt(username + ":" + password)
}

// Decode reverses Encode. Usernames cannot contain a colon; passwords can.
func (c *StateCodec) Decode(state string) (username, password string, err error) {
	plain, err := c.cipher.Decrypt(state)
	if err != nil {
		return "", "", fmt.Errorf("decode state: %w", err)
	}

	username, password, ok := strings.Cut(plain, ":")
	if !ok {
		return "", "", fmt.Errorf("decode state: malformed payload")
	}
	return username, password, nil
}
