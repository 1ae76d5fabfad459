package testkit

import (
	"context"
	"fmt"

	"plaquerisk/domain/cohort"
	"plaquerisk/ports"
)

// FrequencyClassifier returns the training positive-label frequency as its
// score for every row. Useful for hand-computable bootstrap expectations.
type FrequencyClassifier struct {
	rate   float64
	fitted bool
}

// NewFrequencyClassifier creates an unfitted frequency classifier.
func NewFrequencyClassifier() *FrequencyClassifier {
	return &FrequencyClassifier{}
}

// FrequencyFactory produces fresh frequency classifiers.
func FrequencyFactory() ports.ClassifierFactory {
	return func() ports.Classifier { return NewFrequencyClassifier() }
}

func (c *FrequencyClassifier) Fit(ctx context.Context, ds cohort.Dataset) error {
	if ds.Len() == 0 {
		return fmt.Errorf("empty training set")
	}
	positives, _ := ds.LabelCounts()
	c.rate = float64(positives) / float64(ds.Len())
	c.fitted = true
	return nil
}

func (c *FrequencyClassifier) PredictProba(ctx context.Context, rows []cohort.Profile) ([]float64, error) {
	if !c.fitted {
		return nil, fmt.Errorf("classifier not fitted")
	}
	probs := make([]float64, len(rows))
	for i := range probs {
		probs[i] = c.rate
	}
	return probs, nil
}

// FuncClassifier scores each row with a fixed function. Fit is a no-op, so
// it is fully deterministic and stateless across iterations.
type FuncClassifier struct {
	Score func(row cohort.Profile) float64
}

func (c *FuncClassifier) Fit(ctx context.Context, ds cohort.Dataset) error {
	return nil
}

func (c *FuncClassifier) PredictProba(ctx context.Context, rows []cohort.Profile) ([]float64, error) {
	probs := make([]float64, len(rows))
	for i, row := range rows {
		probs[i] = c.Score(row)
	}
	return probs, nil
}

// FailingClassifier returns the configured error from both methods; used to
// check that classifier failures propagate undecorated.
type FailingClassifier struct {
	Err error
}

func (c *FailingClassifier) Fit(ctx context.Context, ds cohort.Dataset) error {
	return c.Err
}

func (c *FailingClassifier) PredictProba(ctx context.Context, rows []cohort.Profile) ([]float64, error) {
	return nil, c.Err
}

var (
	_ ports.Classifier = (*FrequencyClassifier)(nil)
	_ ports.Classifier = (*FuncClassifier)(nil)
	_ ports.Classifier = (*FailingClassifier)(nil)
)
