package service

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"math/rand"
)

// Rand is the injectable source of randomness used for vocabulary picks,
// filename suffixes, and cosmetic engagement counts. Tests substitute a
// deterministic implementation.
type Rand interface {
	// IntN returns a uniform random int in [0, n). n must be positive.
	IntN(n int) int
	// Hex returns n random bytes encoded as lowercase hex.
	Hex(n int) string
}

type systemRand struct{}

// SystemRand returns the production randomness source: math/rand for
// uniform picks and crypto/rand for filename suffixes.
func SystemRand() Rand {
	return systemRand{}
}

func (systemRand) IntN(n int) int {
	return rand.Intn(n)
}

func (systemRand) Hex(n int) string {
	buf := make([]byte, n)
	// rand.Read never returns an error on supported platforms.
	_, _ = cryptorand.Read(buf)
	return hex.EncodeToString(buf)
}
