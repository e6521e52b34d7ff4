package security

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken creates a cryptographically secure random token (256 bits).
// The token is returned as a 64-character hex string. It carries no embedded
// meaning; validity is established by store lookup only.
func GenerateToken() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(randomBytes), nil
}
