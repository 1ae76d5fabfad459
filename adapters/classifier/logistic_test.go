package classifier

import (
	"context"
	"math"
	"reflect"
	"testing"

	"plaquerisk/domain/cohort"
	"plaquerisk/domain/metrics"
	"plaquerisk/internal/testkit"
)

func separableDataset() cohort.Dataset {
	ds := cohort.Dataset{Features: []string{"marker"}}
	for i := 0; i < 20; i++ {
		ds.Rows = append(ds.Rows, cohort.Profile{"marker": cohort.Num(float64(i))})
		label := 0
		if i >= 10 {
			label = 1
		}
		ds.Labels = append(ds.Labels, label)
	}
	return ds
}

func TestLogisticRegression_LearnsSeparableData(t *testing.T) {
	ctx := context.Background()
	ds := separableDataset()

	clf := NewLogisticRegression(Config{})
	if err := clf.Fit(ctx, ds); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	probs, err := clf.PredictProba(ctx, ds.Rows)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}

	summary, err := metrics.NewComputer().Compute(ds.Labels, probs)
	if err != nil {
		t.Fatalf("metric computation failed: %v", err)
	}
	if summary.ROCAUC < 0.99 {
		t.Errorf("Expected near-perfect ranking on separable data, got ROC-AUC %f", summary.ROCAUC)
	}

	// Scores must be monotone in the single feature.
	for i := 1; i < len(probs); i++ {
		if probs[i] <= probs[i-1] {
			t.Fatalf("probabilities not monotone at %d: %f <= %f", i, probs[i], probs[i-1])
		}
	}
}

func TestLogisticRegression_Deterministic(t *testing.T) {
	ctx := context.Background()
	ds := testkit.NewCohortGenerator(11).Generate(60)

	score := func() []float64 {
		clf := NewLogisticRegression(Config{})
		if err := clf.Fit(ctx, ds); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		probs, err := clf.PredictProba(ctx, ds.Rows)
		if err != nil {
			t.Fatalf("PredictProba failed: %v", err)
		}
		return probs
	}

	if !reflect.DeepEqual(score(), score()) {
		t.Error("Two identical fits must produce bit-identical probabilities")
	}
}

func TestLogisticRegression_MixedFeatureKinds(t *testing.T) {
	ctx := context.Background()
	ds := testkit.NewCohortGenerator(5).Generate(80)

	clf := NewLogisticRegression(Config{})
	if err := clf.Fit(ctx, ds); err != nil {
		t.Fatalf("Fit failed on mixed-kind cohort: %v", err)
	}

	probs, err := clf.PredictProba(ctx, ds.Rows)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	for i, p := range probs {
		if p <= 0 || p >= 1 || math.IsNaN(p) {
			t.Fatalf("probability %d out of (0,1): %f", i, p)
		}
	}
}

func TestLogisticRegression_UnseenCategoryAndMissingValues(t *testing.T) {
	ctx := context.Background()
	ds := cohort.Dataset{
		Features: []string{"grade", "marker"},
		Rows: []cohort.Profile{
			{"grade": cohort.Cat("I"), "marker": cohort.Num(1)},
			{"grade": cohort.Cat("II"), "marker": cohort.Num(2)},
			{"grade": cohort.Cat("I"), "marker": cohort.Num(3)},
			{"grade": cohort.Cat("II"), "marker": cohort.Num(4)},
		},
		Labels: []int{0, 0, 1, 1},
	}

	clf := NewLogisticRegression(Config{Epochs: 50})
	if err := clf.Fit(ctx, ds); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	rows := []cohort.Profile{
		{"grade": cohort.Cat("IV"), "marker": cohort.Num(2)}, // unseen category
		{"grade": cohort.Cat("I"), "marker": cohort.Missing}, // missing numeric
	}
	probs, err := clf.PredictProba(ctx, rows)
	if err != nil {
		t.Fatalf("PredictProba should tolerate unseen/missing values: %v", err)
	}
	for i, p := range probs {
		if p <= 0 || p >= 1 {
			t.Errorf("probability %d out of (0,1): %f", i, p)
		}
	}
}

func TestLogisticRegression_RejectsBadInput(t *testing.T) {
	ctx := context.Background()

	clf := NewLogisticRegression(Config{})
	if _, err := clf.PredictProba(ctx, nil); err == nil {
		t.Error("Unfitted classifier must refuse to predict")
	}

	if err := clf.Fit(ctx, testkit.SingleClassCohort()); err == nil {
		t.Error("Fit must reject single-class training data")
	}
}

func TestConfig_Defaults(t *testing.T) {
	got := Config{}.withDefaults()
	want := Config{LearningRate: 0.1, Epochs: 500, L2: 1.0}
	if got != want {
		t.Errorf("Zero-value config defaults = %+v, want %+v", got, want)
	}

	custom := Config{LearningRate: 0.05, Epochs: 100, L2: 2.5}
	if custom.withDefaults() != custom {
		t.Errorf("Explicit config must survive withDefaults, got %+v", custom.withDefaults())
	}
}

func TestLogisticRegression_ZeroValueConfigRegularizes(t *testing.T) {
	ctx := context.Background()
	ds := testkit.NewCohortGenerator(7).Generate(60)

	score := func(cfg Config) []float64 {
		clf := NewLogisticRegression(cfg)
		if err := clf.Fit(ctx, ds); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		probs, err := clf.PredictProba(ctx, ds.Rows)
		if err != nil {
			t.Fatalf("PredictProba failed: %v", err)
		}
		return probs
	}

	// The zero-value config must train the same model as an explicit L2=1.0,
	// and differently from a heavier penalty.
	if !reflect.DeepEqual(score(Config{}), score(Config{L2: 1.0})) {
		t.Error("Config{} must fit with the default ridge penalty")
	}
	if reflect.DeepEqual(score(Config{}), score(Config{L2: 10.0})) {
		t.Error("Changing the ridge penalty must change the fitted model")
	}
}

func TestFactory_ProducesFreshInstances(t *testing.T) {
	factory := Factory(Config{})
	a, b := factory(), factory()
	if a == b {
		t.Error("Factory must build a fresh classifier per call")
	}
}
