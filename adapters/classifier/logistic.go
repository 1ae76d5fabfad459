// Package classifier provides concrete implementations of the classifier
// port. The evaluation core treats them as opaque probability models.
package classifier

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"plaquerisk/domain/cohort"
	"plaquerisk/ports"
)

// Config tunes the logistic regression fit.
type Config struct {
	LearningRate float64 // default 0.1
	Epochs       int     // default 500
	L2           float64 // ridge penalty, default 1.0
}

func (c Config) withDefaults() Config {
	if c.LearningRate <= 0 {
		c.LearningRate = 0.1
	}
	if c.Epochs <= 0 {
		c.Epochs = 500
	}
	if c.L2 <= 0 {
		c.L2 = 1.0
	}
	return c
}

// LogisticRegression is an L2-regularized logistic model fit by batch
// gradient descent. Weights start at zero and the epoch count is fixed, so
// fitting is fully deterministic.
type LogisticRegression struct {
	cfg     Config
	schema  *encodingSchema
	weights *mat.VecDense // index 0 is the intercept
	fitted  bool
}

// NewLogisticRegression creates an unfitted model.
func NewLogisticRegression(cfg Config) *LogisticRegression {
	return &LogisticRegression{cfg: cfg.withDefaults()}
}

// Factory returns a classifier factory producing fresh instances, one per
// bootstrap iteration.
func Factory(cfg Config) ports.ClassifierFactory {
	return func() ports.Classifier {
		return NewLogisticRegression(cfg)
	}
}

// Fit trains on the labeled dataset. The encoding schema (numeric
// standardization constants, category vocabularies) is captured here and
// reused for every later prediction.
func (m *LogisticRegression) Fit(ctx context.Context, ds cohort.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	if ds.SingleClass() {
		return fmt.Errorf("logistic fit requires both classes")
	}

	m.schema = buildSchema(ds)
	n := ds.Len()
	d := m.schema.width() + 1 // plus intercept

	x := mat.NewDense(n, d, nil)
	y := make([]float64, n)
	for i, row := range ds.Rows {
		x.SetRow(i, m.schema.encode(row))
		y[i] = float64(ds.Labels[i])
	}

	w := mat.NewVecDense(d, nil)
	var z, grad mat.VecDense
	residual := mat.NewVecDense(n, nil)
	for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		z.MulVec(x, w)
		for i := 0; i < n; i++ {
			residual.SetVec(i, sigmoid(z.AtVec(i))-y[i])
		}
		grad.MulVec(x.T(), residual)
		for j := 0; j < d; j++ {
			g := grad.AtVec(j) / float64(n)
			if j > 0 { // never regularize the intercept
				g += m.cfg.L2 * w.AtVec(j) / float64(n)
			}
			w.SetVec(j, w.AtVec(j)-m.cfg.LearningRate*g)
		}
	}

	m.weights = w
	m.fitted = true
	return nil
}

// PredictProba scores rows with the positive-class probability.
func (m *LogisticRegression) PredictProba(ctx context.Context, rows []cohort.Profile) ([]float64, error) {
	if !m.fitted {
		return nil, fmt.Errorf("classifier not fitted")
	}
	probs := make([]float64, len(rows))
	for i, row := range rows {
		encoded := m.schema.encode(row)
		z := 0.0
		for j, v := range encoded {
			z += v * m.weights.AtVec(j)
		}
		probs[i] = sigmoid(z)
	}
	return probs, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// encodingSchema maps profiles onto a fixed design-matrix layout: intercept,
// standardized numerics, 0/1 booleans, one-hot categoricals.
type encodingSchema struct {
	features []string
	columns  map[string]*featureEncoder
}

type featureEncoder struct {
	kind       cohort.Kind
	offset     int // first column after the intercept
	mean, std  float64
	trueRate   float64  // bool imputation for missing values
	categories []string // first-encountered order
	index      map[string]int
}

func buildSchema(ds cohort.Dataset) *encodingSchema {
	s := &encodingSchema{
		features: ds.Features,
		columns:  make(map[string]*featureEncoder, len(ds.Features)),
	}
	offset := 1 // column 0 is the intercept
	for _, feature := range ds.Features {
		enc := &featureEncoder{kind: cohort.KindMissing, offset: offset}
		var numbers []float64
		trues, bools := 0, 0
		for _, row := range ds.Rows {
			v := row[feature]
			if v.IsMissing() {
				continue
			}
			if enc.kind == cohort.KindMissing {
				enc.kind = v.Kind
			}
			switch v.Kind {
			case cohort.KindNumber:
				numbers = append(numbers, v.Number)
			case cohort.KindBool:
				bools++
				if v.Flag {
					trues++
				}
			case cohort.KindCategory:
				if enc.index == nil {
					enc.index = make(map[string]int)
				}
				if _, ok := enc.index[v.Category]; !ok {
					enc.index[v.Category] = len(enc.categories)
					enc.categories = append(enc.categories, v.Category)
				}
			}
		}
		switch enc.kind {
		case cohort.KindNumber:
			enc.mean = floats.Sum(numbers) / float64(len(numbers))
			variance := 0.0
			for _, v := range numbers {
				variance += (v - enc.mean) * (v - enc.mean)
			}
			enc.std = math.Sqrt(variance / float64(len(numbers)))
			if enc.std < 1e-12 {
				enc.std = 1
			}
			offset++
		case cohort.KindBool:
			if bools > 0 {
				enc.trueRate = float64(trues) / float64(bools)
			}
			offset++
		case cohort.KindCategory:
			offset += len(enc.categories)
		default:
			// Entirely missing column contributes no design columns.
		}
		s.columns[feature] = enc
	}
	return s
}

func (s *encodingSchema) width() int {
	w := 0
	for _, enc := range s.columns {
		switch enc.kind {
		case cohort.KindNumber, cohort.KindBool:
			w++
		case cohort.KindCategory:
			w += len(enc.categories)
		}
	}
	return w
}

// encode renders one profile as a design row. Missing numerics impute to the
// training mean (zero after standardization), missing booleans to the
// training true-rate, and unseen categories to an all-zero one-hot block.
func (s *encodingSchema) encode(row cohort.Profile) []float64 {
	out := make([]float64, s.width()+1)
	out[0] = 1 // intercept
	for _, feature := range s.features {
		enc := s.columns[feature]
		v := row[feature]
		switch enc.kind {
		case cohort.KindNumber:
			if v.Kind == cohort.KindNumber {
				out[enc.offset] = (v.Number - enc.mean) / enc.std
			}
		case cohort.KindBool:
			if v.Kind == cohort.KindBool {
				if v.Flag {
					out[enc.offset] = 1
				}
			} else {
				out[enc.offset] = enc.trueRate
			}
		case cohort.KindCategory:
			if v.Kind == cohort.KindCategory {
				if idx, ok := enc.index[v.Category]; ok {
					out[enc.offset+idx] = 1
				}
			}
		}
	}
	return out
}

var _ ports.Classifier = (*LogisticRegression)(nil)
