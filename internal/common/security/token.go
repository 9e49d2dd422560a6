package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSessionToken returns a hex-encoded token with byteLen bytes of
// entropy from the system CSPRNG. 32 bytes yields a 64-char token.
func GenerateSessionToken(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// TruncateToken returns a short token prefix safe for log correlation.
// Full tokens must never be logged.
func TruncateToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "..."
}
