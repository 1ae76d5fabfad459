package metrics

import (
	"math"
	"testing"

	"plaquerisk/domain/core"
)

func TestCompute_PerfectSeparation(t *testing.T) {
	labels := []int{0, 0, 0, 1, 1}
	scores := []float64{0.1, 0.2, 0.3, 0.8, 0.9}

	summary, err := NewComputer().Compute(labels, scores)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if summary.ROCAUC != 1.0 {
		t.Errorf("Expected ROC-AUC 1.0 for perfect separation, got %f", summary.ROCAUC)
	}
	if summary.PRAUC != 1.0 {
		t.Errorf("Expected PR-AUC 1.0 for perfect separation, got %f", summary.PRAUC)
	}
	if summary.SampleSize != 5 || summary.Positives != 2 {
		t.Errorf("Expected sample size 5 with 2 positives, got %d/%d", summary.SampleSize, summary.Positives)
	}
}

func TestCompute_ConstantScores(t *testing.T) {
	// Every score tied: ROC-AUC must be exactly 0.5 by average ranks, and the
	// PR curve collapses to a flat line at prevalence.
	labels := []int{0, 0, 0, 1, 1}
	scores := []float64{0.4, 0.4, 0.4, 0.4, 0.4}

	summary, err := NewComputer().Compute(labels, scores)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if summary.ROCAUC != 0.5 {
		t.Errorf("Expected ROC-AUC 0.5 for constant scores, got %f", summary.ROCAUC)
	}
	prevalence := 2.0 / 5.0
	if math.Abs(summary.PRAUC-prevalence) > 1e-12 {
		t.Errorf("Expected PR-AUC %f (prevalence) for constant scores, got %f", prevalence, summary.PRAUC)
	}
}

func TestCompute_HandComputedCase(t *testing.T) {
	// Positives at 0.35 and 0.8, negatives at 0.1 and 0.4. Three of the four
	// positive/negative pairs rank correctly, so ROC-AUC is 0.75.
	labels := []int{0, 1, 0, 1}
	scores := []float64{0.1, 0.35, 0.4, 0.8}

	summary, err := NewComputer().Compute(labels, scores)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if math.Abs(summary.ROCAUC-0.75) > 1e-12 {
		t.Errorf("Expected ROC-AUC 0.75, got %f", summary.ROCAUC)
	}

	// Threshold sweep points: (r=0.5,p=1), (0.5,0.5), (1,2/3), (1,0.5),
	// anchored at recall 0 with precision 1. Trapezoidal area:
	// 0.5*1 + 0.5*(0.5+2/3)/2 = 0.7916...
	expectedPR := 0.5 + 0.5*(0.5+2.0/3.0)/2.0
	if math.Abs(summary.PRAUC-expectedPR) > 1e-12 {
		t.Errorf("Expected PR-AUC %f, got %f", expectedPR, summary.PRAUC)
	}
}

func TestCompute_TiedPositiveNegativePair(t *testing.T) {
	summary, err := NewComputer().Compute([]int{0, 1}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if summary.ROCAUC != 0.5 {
		t.Errorf("Tied pair should contribute 0.5, got ROC-AUC %f", summary.ROCAUC)
	}
}

func TestCompute_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		scores []float64
	}{
		{"empty", nil, nil},
		{"all negative", []int{0, 0, 0}, []float64{0.1, 0.2, 0.3}},
		{"all positive", []int{1, 1, 1}, []float64{0.1, 0.2, 0.3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewComputer().Compute(tt.labels, tt.scores)
			if !core.IsDegenerateFold(err) {
				t.Errorf("Expected degenerate-fold error, got %v", err)
			}
		})
	}
}

func TestCompute_LengthMismatch(t *testing.T) {
	_, err := NewComputer().Compute([]int{0, 1}, []float64{0.5})
	if err == nil {
		t.Fatal("Expected error for mismatched lengths")
	}
	if core.IsDegenerateFold(err) {
		t.Error("Length mismatch is a caller bug, not a degenerate fold")
	}
}
