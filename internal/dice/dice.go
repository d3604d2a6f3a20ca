// Package dice provides the d100 roll source for action resolution.
// The Roller interface is the engine's only randomness seam: production
// wires a seeded PCG source, tests pin exact rolls with a Sequence.
package dice

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"
	"sync"
)

// Roller yields uniformly distributed integers in [1, 100].
type Roller interface {
	Roll() int
}

// Source is a seeded pseudo-random Roller. Safe for concurrent use.
type Source struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// NewSource creates a Roller seeded deterministically. A zero seed picks
// a random one from crypto/rand.
func NewSource(seed uint64) *Source {
	if seed == 0 {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err == nil {
			seed = binary.LittleEndian.Uint64(buf[:])
		}
		if seed == 0 {
			seed = 1
		}
	}
	return &Source{rng: mathrand.New(mathrand.NewPCG(seed, seed))}
}

// Roll returns the next d100 result.
func (s *Source) Roll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(100) + 1
}

// Sequence replays a fixed list of rolls, cycling when exhausted.
type Sequence struct {
	mu    sync.Mutex
	rolls []int
	next  int
}

// NewSequence creates a Roller that returns the given rolls in order.
// An empty sequence always rolls 50.
func NewSequence(rolls ...int) *Sequence {
	return &Sequence{rolls: rolls}
}

// Roll returns the next pinned roll.
func (s *Sequence) Roll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rolls) == 0 {
		return 50
	}
	r := s.rolls[s.next%len(s.rolls)]
	s.next++
	return r
}
