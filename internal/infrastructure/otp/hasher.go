package otp

import (
	"fmt"

	"github.com/casaflow/casaflow/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a code hasher using bcrypt with the given cost.
// A cost <= 0 falls back to bcrypt.DefaultCost. The adaptive cost keeps an
// offline sweep of the six-digit space slower than the code's lifetime.
func NewBcryptHasher(cost int) ports.CodeHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash code: %w", err)
	}
	return string(hashed), nil
}

// Verify compares without exposing mismatch position through timing;
// bcrypt recomputes the full hash before comparing.
func (h *bcryptHasher) Verify(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
