// Package rng provides a seedable PRNG shared by the synthetic tick source
// and anything else in the simulator that needs reproducible randomness.
package rng

import (
	"math/rand"
	"sync"
	"time"
)

// RNG wraps a math/rand.Rand behind a mutex so it's safe for concurrent use
// (the synthetic source may be read from and reconfigured from different
// goroutines).
type RNG struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a new PRNG with the given seed. If seed is 0, uses current time.
func New(seed int64) *RNG {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RNG{rnd: rand.New(rand.NewSource(seed))}
}

// Uint32 returns a uniformly distributed uint32.
func (r *RNG) Uint32() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Uint32()
}

// Float64 returns a uniformly distributed float64 in [0, 1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

// Intn returns a uniformly distributed int in [0, n).
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

// Gaussian returns a standard normal random variable.
func (r *RNG) Gaussian() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.NormFloat64()
}
