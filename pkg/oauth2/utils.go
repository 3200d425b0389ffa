package oauth2

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandomString generates a cryptographically secure random string
// of 2*length hex characters.
func GenerateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
