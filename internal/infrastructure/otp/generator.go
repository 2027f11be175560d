package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/casaflow/casaflow/internal/core/ports"
)

// codeSpace is the number of possible six-digit codes.
const codeSpace = 1000000

type generator struct{}

// NewGenerator returns a code generator backed by crypto/rand.
func NewGenerator() ports.CodeGenerator {
	return &generator{}
}

// Generate draws a uniformly random six-digit code. crypto/rand.Int is
// rejection-sampled, so every code in [000000, 999999] is equally likely.
func (g *generator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", fmt.Errorf("failed to read random source: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
