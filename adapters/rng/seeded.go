// Package rng provides deterministic seeded random streams. Each named
// operation gets its own stream so concurrent consumers never share state.
package rng

import (
	"hash/fnv"
	"math/rand"

	"plaquerisk/ports"
)

// StreamRNG implements ports.RNGPort with FNV-mixed stream seeds.
type StreamRNG struct{}

// NewStreamRNG creates the seeded stream provider.
func NewStreamRNG() *StreamRNG {
	return &StreamRNG{}
}

// SeededStream derives a stream seed from the operation name and base seed.
// The same (name, seed) pair always produces an identical stream.
func (r *StreamRNG) SeededStream(name string, seed int64) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
}

var _ ports.RNGPort = (*StreamRNG)(nil)
