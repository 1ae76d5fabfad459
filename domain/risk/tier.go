// Package risk maps a predicted probability to a discrete clinical tier.
package risk

import "fmt"

// Tier is the discrete risk band surfaced to clinicians.
type Tier string

const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

// Default thresholds; clinical cutoffs are a product decision, so these are
// configuration, not algorithm.
const (
	DefaultLowThreshold  = 0.35
	DefaultHighThreshold = 0.65
)

// TierMapper maps probabilities to tiers via two fixed thresholds. A
// probability exactly equal to a threshold maps to the higher tier
// (inclusive-upper convention).
type TierMapper struct {
	low  float64
	high float64
}

// NewTierMapper validates the thresholds and builds a mapper.
func NewTierMapper(low, high float64) (*TierMapper, error) {
	if low <= 0 || high >= 1 || low >= high {
		return nil, fmt.Errorf("invalid risk thresholds: low=%.3f high=%.3f", low, high)
	}
	return &TierMapper{low: low, high: high}, nil
}

// DefaultTierMapper builds a mapper with the default thresholds.
func DefaultTierMapper() *TierMapper {
	m, _ := NewTierMapper(DefaultLowThreshold, DefaultHighThreshold)
	return m
}

// Tier classifies a probability. Total over [0,1] and deterministic.
func (m *TierMapper) Tier(probability float64) Tier {
	switch {
	case probability >= m.high:
		return TierHigh
	case probability >= m.low:
		return TierModerate
	default:
		return TierLow
	}
}
