package explain

import (
	"context"
	"fmt"
	"math"
	"sort"

	"plaquerisk/domain/cohort"
	"plaquerisk/ports"
)

// Direction tags the sign of a feature effect, with a tolerance band so
// near-zero effects are not labeled by floating-point noise.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
	DirectionNeutral  Direction = "neutral"
)

// ResidualFeature names the synthetic bucket that absorbs feature
// interactions, so the decomposition always sums exactly to the target.
const ResidualFeature = "other_factors"

// DefaultEpsilon is the neutral tolerance band for direction tagging.
const DefaultEpsilon = 1e-4

// FeatureEffect is the marginal probability shift from moving one feature
// from its baseline value to the patient's value, all else held at baseline.
type FeatureEffect struct {
	Feature       string       `json:"feature"`
	Effect        float64      `json:"effect"`
	Direction     Direction    `json:"direction"`
	PatientValue  cohort.Value `json:"patient_value"`
	BaselineValue cohort.Value `json:"baseline_value"`
}

// Result decomposes one prediction. Invariant:
// BaselineProbability + sum(Effects) == TargetProbability by construction,
// because the residual bucket is part of Effects.
type Result struct {
	BaselineProbability float64         `json:"baseline_probability"`
	TargetProbability   float64         `json:"target_probability"`
	Effects             []FeatureEffect `json:"feature_effects"`
	Residual            float64         `json:"residual"`
}

// Top returns up to k named effects by descending magnitude, always followed
// by the residual bucket. The residual was computed against the full feature
// set, so truncation cannot break the summation invariant.
func (r *Result) Top(k int) []FeatureEffect {
	named := make([]FeatureEffect, 0, len(r.Effects))
	var residual *FeatureEffect
	for i, eff := range r.Effects {
		if eff.Feature == ResidualFeature {
			residual = &r.Effects[i]
			continue
		}
		named = append(named, eff)
	}
	if k < len(named) {
		named = named[:k]
	}
	if residual != nil {
		named = append(named, *residual)
	}
	return named
}

// Explainer computes single-feature-delta counterfactual attributions. It is
// deliberately simpler than a Shapley decomposition: one classifier call per
// feature captures main effects, and the interaction remainder is surfaced
// as an explicit residual instead of being discarded.
type Explainer struct {
	Epsilon float64
}

// NewExplainer creates an explainer with the default neutral tolerance.
func NewExplainer() *Explainer {
	return &Explainer{Epsilon: DefaultEpsilon}
}

// Explain decomposes the patient's predicted probability. All synthetic
// profiles are scored in one batch, so repeated calls with the same
// classifier, baseline, and patient are bit-identical. Classifier errors
// propagate untouched; a partial decomposition would be meaningless.
func (e *Explainer) Explain(ctx context.Context, clf ports.Classifier, features []string, baseline, patient cohort.Profile) (*Result, error) {
	rows := make([]cohort.Profile, 0, len(features)+2)
	rows = append(rows, baseline, patient)
	for _, f := range features {
		rows = append(rows, baseline.With(f, patient[f]))
	}

	probs, err := clf.PredictProba(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(probs) != len(rows) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d rows", len(probs), len(rows))
	}

	p0, target := probs[0], probs[1]

	effects := make([]FeatureEffect, 0, len(features)+1)
	rawSum := 0.0
	for i, f := range features {
		effect := probs[2+i] - p0
		rawSum += effect
		effects = append(effects, FeatureEffect{
			Feature:       f,
			Effect:        effect,
			Direction:     e.direction(effect),
			PatientValue:  patient[f],
			BaselineValue: baseline[f],
		})
	}

	// Rank named effects by magnitude; equal magnitudes keep schema order.
	sort.SliceStable(effects, func(a, b int) bool {
		return math.Abs(effects[a].Effect) > math.Abs(effects[b].Effect)
	})

	residual := (target - p0) - rawSum
	effects = append(effects, FeatureEffect{
		Feature:       ResidualFeature,
		Effect:        residual,
		Direction:     e.direction(residual),
		PatientValue:  cohort.Missing,
		BaselineValue: cohort.Missing,
	})

	return &Result{
		BaselineProbability: p0,
		TargetProbability:   target,
		Effects:             effects,
		Residual:            residual,
	}, nil
}

func (e *Explainer) direction(effect float64) Direction {
	eps := e.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	switch {
	case effect > eps:
		return DirectionIncrease
	case effect < -eps:
		return DirectionDecrease
	default:
		return DirectionNeutral
	}
}
