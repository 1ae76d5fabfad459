package ports

import (
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a
	// named operation. The same name and seed always yield the same stream,
	// so parallel bootstrap iterations reproduce run-to-run.
	SeededStream(name string, seed int64) *rand.Rand
}
