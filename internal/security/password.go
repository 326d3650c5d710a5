package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword transforms a raw credential with bcrypt at the given cost.
// A cost of 0 uses bcrypt's default.
func HashPassword(raw string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether raw matches the stored bcrypt hash.
func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
