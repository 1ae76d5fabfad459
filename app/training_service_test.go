package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"plaquerisk/adapters/rng"
	"plaquerisk/domain/cohort"
	"plaquerisk/domain/metrics"
	"plaquerisk/domain/validation"
	"plaquerisk/internal"
	"plaquerisk/internal/testkit"
)

// staticReader serves a fixed dataset regardless of path.
type staticReader struct {
	ds  cohort.Dataset
	err error
}

func (r *staticReader) ReadCohort(ctx context.Context, path string) (cohort.Dataset, error) {
	if r.err != nil {
		return cohort.Dataset{}, r.err
	}
	return r.ds, nil
}

func TestTrainingRun_EndToEnd(t *testing.T) {
	ds := testkit.NewCohortGenerator(3).Generate(40)
	store := testkit.NewInMemoryStore()
	engine := validation.NewEngine(metrics.NewComputer(), rng.NewStreamRNG())

	svc := NewTrainingService(
		&staticReader{ds: ds},
		engine,
		testkit.FrequencyFactory(),
		store,
		internal.NewLogger(internal.LogLevelError),
	)

	result, err := svc.Run(context.Background(), TrainingRequest{
		CohortPath: "ignored.csv",
		ModelName:  "freq_baseline",
		Iterations: 25,
		Seed:       17,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Report == nil || result.Model == nil {
		t.Fatal("result must carry the report and the fitted model")
	}
	if len(result.Features) != len(ds.Features) {
		t.Errorf("features = %v, want the cohort schema", result.Features)
	}
	for _, f := range ds.Features {
		if _, ok := result.Baseline[f]; !ok {
			t.Errorf("baseline missing feature %q", f)
		}
	}

	// The fitted model must be usable immediately.
	probs, err := result.Model.PredictProba(context.Background(), ds.Rows[:3])
	if err != nil {
		t.Fatalf("final model not fitted: %v", err)
	}
	if len(probs) != 3 {
		t.Fatalf("expected 3 probabilities, got %d", len(probs))
	}

	// The report must be persisted with full iteration detail.
	saved, err := store.LatestReport(context.Background())
	if err != nil {
		t.Fatalf("report not persisted: %v", err)
	}
	if saved.RunID != result.Report.RunID.String() || saved.ModelName != "freq_baseline" {
		t.Errorf("persisted record mismatch: %+v", saved)
	}
	if saved.CorrectedROCAUC != result.Report.ROCAUC.Corrected {
		t.Errorf("persisted corrected ROC-AUC %f != report %f", saved.CorrectedROCAUC, result.Report.ROCAUC.Corrected)
	}

	var detail []validation.IterationRecord
	if err := json.Unmarshal(saved.IterationDetail, &detail); err != nil {
		t.Fatalf("iteration detail is not valid JSON: %v", err)
	}
	if len(detail) != 25 {
		t.Errorf("expected 25 persisted iterations, got %d", len(detail))
	}
}

func TestTrainingRun_ReaderErrorPropagates(t *testing.T) {
	boom := errors.New("file unreadable")
	svc := NewTrainingService(
		&staticReader{err: boom},
		validation.NewEngine(metrics.NewComputer(), rng.NewStreamRNG()),
		testkit.FrequencyFactory(),
		testkit.NewInMemoryStore(),
		internal.NewLogger(internal.LogLevelError),
	)

	_, err := svc.Run(context.Background(), TrainingRequest{CohortPath: "missing.csv"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected reader error, got %v", err)
	}
}

func TestTrainingRun_ProgressLoggingDoesNotAffectResults(t *testing.T) {
	// Two runs with the same seed must persist identical estimates even with
	// the progress callback active.
	ds := testkit.NewCohortGenerator(9).Generate(30)

	run := func() *validation.Report {
		store := testkit.NewInMemoryStore()
		svc := NewTrainingService(
			&staticReader{ds: ds},
			validation.NewEngine(metrics.NewComputer(), rng.NewStreamRNG()),
			testkit.FrequencyFactory(),
			store,
			internal.NewLogger(internal.LogLevelError),
		)
		result, err := svc.Run(context.Background(), TrainingRequest{Iterations: 30, Seed: 4})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return result.Report
	}

	first, second := run(), run()
	if first.ROCAUC != second.ROCAUC || first.PRAUC != second.PRAUC {
		t.Error("same-seed training runs must produce identical estimates")
	}
}
