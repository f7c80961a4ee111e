package search

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// TieBreaker picks one of n equally scored candidates and returns its
// position in 0..n-1. n is always at least 1.
type TieBreaker interface {
	Pick(n int) int
}

// LowestIndex always keeps the first tied candidate, i.e. the lowest
// board index.
type LowestIndex struct{}

func (LowestIndex) Pick(int) int { return 0 }

type randomTie struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// Random chooses uniformly among tied candidates. A nil source uses the
// global math/rand generator.
func Random(r *rand.Rand) TieBreaker {
	return &randomTie{rnd: r}
}

// Seeded is Random over a fixed seed, for reproducible games.
func Seeded(seed int64) TieBreaker {
	return Random(rand.New(rand.NewSource(seed)))
}

func (t *randomTie) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	if t.rnd == nil {
		return rand.Intn(n)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rnd.Intn(n)
}

// ParseTieBreak maps a policy name to a TieBreaker. For "seeded" a zero
// seed is replaced with the current time.
func ParseTieBreak(name string, seed int64) (TieBreaker, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "random":
		return Random(nil), nil
	case "lowest":
		return LowestIndex{}, nil
	case "seeded":
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return Seeded(seed), nil
	}
	return nil, fmt.Errorf("unknown tie-break policy %q", name)
}
