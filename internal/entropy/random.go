// Package entropy provides the randomness used by the event engine.
// Sources are seeded for reproducible runs, or seeded from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source draws bounded random integers. It is not safe for concurrent use and
// not cryptographically secure.
type Source struct {
	rng *mrand.Rand
}

// New creates a source with a fixed seed.
func New(seed int64) *Source {
	return &Source{rng: mrand.New(mrand.NewSource(seed))}
}

// NewRandom creates a source seeded from crypto/rand.
func NewRandom() *Source {
	return New(cryptoSeed())
}

// Percent returns a uniform integer in [0, 100).
func (s *Source) Percent() int {
	return s.rng.Intn(100)
}

// Below returns a uniform integer in [0, n). It returns 0 when n <= 0.
func (s *Source) Below(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.Intn(n)
}

// cryptoSeed generates a seed using crypto/rand.
func cryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed seed.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
