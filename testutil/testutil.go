// Package testutil provides deterministic helpers shared by tests.
package testutil

import (
	"math/rand"
	"sync"
)

// RNG is a seeded, thread-safe random number generator for tests.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// FillBytes fills dst with random byte values.
func (r *RNG) FillBytes(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = byte(r.rand.Intn(256))
	}
}

// FillNibbles fills dst with random values in [0,16), the value range
// of a 4-bit quantized dimension.
func (r *RNG) FillNibbles(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = byte(r.rand.Intn(16))
	}
}

// SortedDocIDs returns n distinct, strictly increasing document ids
// drawn from [0, maxDoc).
func (r *RNG) SortedDocIDs(n, maxDoc int) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int]struct{}, n)
	for len(seen) < n {
		seen[r.rand.Intn(maxDoc)] = struct{}{}
	}
	docs := make([]uint32, 0, n)
	for d := range seen {
		docs = append(docs, uint32(d))
	}
	for i := 1; i < len(docs); i++ {
		for j := i; j > 0 && docs[j] < docs[j-1]; j-- {
			docs[j], docs[j-1] = docs[j-1], docs[j]
		}
	}
	return docs
}
