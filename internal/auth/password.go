package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/outgoapp/outgo/services"
)

// BcryptPasswordHasher hashes passwords with bcrypt. Federated accounts run
// their random placeholder passwords through the same path as local ones, so
// every stored hash is a real bcrypt hash.
type BcryptPasswordHasher struct {
	Cost int
}

// NewBcryptPasswordHasher returns a hasher with the given cost; a cost of 0
// or less falls back to bcrypt.DefaultCost.
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{Cost: cost}
}

// Hash produces a bcrypt hash of password. Inputs over bcrypt's 72-byte
// limit fail rather than being silently truncated.
func (h *BcryptPasswordHasher) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash generation failed: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify reports whether password matches hashedPassword; nil means a match.
func (h *BcryptPasswordHasher) Verify(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

var _ services.PasswordHasher = (*BcryptPasswordHasher)(nil)
