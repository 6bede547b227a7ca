// Package generator holds the pure algorithmic core of paper generation:
// seedable shuffling, label formatting, fill-in distractor permutations and
// SKU minting. Nothing here touches storage or transport.
package generator

import (
	"math/rand/v2"
	"time"
)

// NewRand returns a seedable random source. Tests pass fixed seeds for
// deterministic shuffles; production callers use NewTimeRand.
func NewRand(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// NewTimeRand returns a source seeded from the wall clock.
func NewTimeRand() *rand.Rand {
	now := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(now, now>>32))
}

// Shuffle permutes s in place with a Fisher–Yates shuffle driven by r.
func Shuffle[T any](r *rand.Rand, s []T) {
	r.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

// Pick draws n elements uniformly without replacement from pool. Asking for
// more elements than the pool holds returns the whole pool shuffled; callers
// that need exactly n must check the pool size first. The pool is not
// mutated; the result is a fresh slice.
func Pick[T any](r *rand.Rand, pool []T, n int) []T {
	if n > len(pool) {
		n = len(pool)
	}
	tmp := make([]T, len(pool))
	copy(tmp, pool)
	Shuffle(r, tmp)
	return tmp[:n]
}
