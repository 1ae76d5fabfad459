package ports

import (
	"context"

	"plaquerisk/domain/cohort"
)

// Classifier is the opaque binary probability model the evaluation core
// depends on. Any concrete model (logistic regression, gradient boosting,
// an external AutoML runtime) is a valid substitute; the core's correctness
// properties are classifier-agnostic.
type Classifier interface {
	// Fit trains the classifier on the labeled dataset. Duplicate rows count
	// toward the effective training weight.
	Fit(ctx context.Context, ds cohort.Dataset) error

	// PredictProba scores each row with the probability of the positive
	// class, in [0,1], preserving row order.
	PredictProba(ctx context.Context, rows []cohort.Profile) ([]float64, error)
}

// ClassifierFactory constructs a fresh classifier instance. Bootstrap
// validation calls it once per iteration so no fitted state leaks between
// resamples.
type ClassifierFactory func() Classifier
