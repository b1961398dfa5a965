package token

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeMin = 1000
	codeMax = 9999
)

// NewActivationCode returns a 4-digit decimal code drawn uniformly from
// [1000, 9999] using a cryptographic source.
func NewActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate activation code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
