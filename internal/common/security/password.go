package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt at the given cost.
// Higher cost means more iterations; cost is policy, configured once at startup.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash verifies a plaintext password against a stored bcrypt
// hash. A malformed hash is a verification failure, never a panic.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength checks the password against the minimum-length
// policy. Returns the reason when invalid.
func ValidatePasswordStrength(password string, minLength int) (bool, string) {
	if len(password) < minLength {
		return false, fmt.Sprintf("La contraseña debe tener al menos %d caracteres", minLength)
	}
	return true, ""
}
