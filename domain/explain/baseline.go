// Package explain decomposes a predicted probability into additive
// single-feature effects against a reference "typical patient" baseline, for
// display as a waterfall chart.
package explain

import (
	"github.com/montanaflynn/stats"

	"plaquerisk/domain/cohort"
)

// BaselineBuilder derives the reference profile from a training cohort:
// median for numeric features, most frequent value for boolean and
// categorical ones. Ties break toward the first-encountered value so the
// baseline is deterministic.
type BaselineBuilder struct{}

// NewBaselineBuilder creates a baseline profile builder.
func NewBaselineBuilder() *BaselineBuilder {
	return &BaselineBuilder{}
}

// Build computes one reference value per feature. Missing observations are
// excluded from the median/mode; a column with no observations at all keeps
// an explicitly missing baseline rather than an arbitrary default.
func (b *BaselineBuilder) Build(ds cohort.Dataset) (cohort.Profile, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	baseline := make(cohort.Profile, len(ds.Features))
	for _, feature := range ds.Features {
		baseline[feature] = columnBaseline(ds, feature)
	}
	return baseline, nil
}

func columnBaseline(ds cohort.Dataset, feature string) cohort.Value {
	var numbers []float64
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	exemplar := make(map[string]cohort.Value)
	kind := cohort.KindMissing

	for _, row := range ds.Rows {
		v := row[feature]
		if v.IsMissing() {
			continue
		}
		if kind == cohort.KindMissing {
			kind = v.Kind
		}
		if v.Kind == cohort.KindNumber {
			numbers = append(numbers, v.Number)
			continue
		}
		key := v.Key()
		if _, ok := firstSeen[key]; !ok {
			firstSeen[key] = len(firstSeen)
			exemplar[key] = v
		}
		counts[key]++
	}

	switch kind {
	case cohort.KindNumber:
		median, err := stats.Median(numbers)
		if err != nil {
			return cohort.Missing
		}
		return cohort.Num(median)
	case cohort.KindBool, cohort.KindCategory:
		best, bestCount := "", -1
		for key, count := range counts {
			if count > bestCount || (count == bestCount && firstSeen[key] < firstSeen[best]) {
				best, bestCount = key, count
			}
		}
		return exemplar[best]
	default:
		// Entire column missing: the baseline stays explicitly unknown.
		return cohort.Missing
	}
}
