package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque IDs used to tag games in logs and state snapshots.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct {
	prefix string
}

func NewRandomGenerator(prefix string) *RandomGenerator {
	return &RandomGenerator{prefix: prefix}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	if g.prefix == "" {
		return hex.EncodeToString(buf), nil
	}
	return g.prefix + "-" + hex.EncodeToString(buf), nil
}

// Sequence hands out predictable ids; tests use it to assert on game ids.
type Sequence struct {
	prefix string
	next   int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() (string, error) {
	s.next++
	return fmt.Sprintf("%s-%d", s.prefix, s.next), nil
}
