// internal/auth/key.go
package auth

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keyInfo = "loveletter session tokens v1"

// DeriveSigningKey expands a configured secret into the 32-byte HMAC key
// session tokens are signed with.
func DeriveSigningKey(secret string) []byte {
	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		panic("hkdf: " + err.Error())
	}
	return key
}
