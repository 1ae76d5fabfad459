// Package validation implements optimism-corrected bootstrap validation: the
// model is refit on resamples drawn with replacement, the gap between in-bag
// and out-of-bag performance estimates the overfitting bias, and that bias is
// subtracted from the apparent full-data estimate.
package validation

import (
	"plaquerisk/domain/core"
	"plaquerisk/domain/metrics"
)

// OptimismMode selects how the corrected estimate is derived.
type OptimismMode string

const (
	// ModeFullData subtracts the mean optimism from the apparent metric of a
	// model fit on the entire dataset. The default.
	ModeFullData OptimismMode = "full"

	// ModePerFold averages the out-of-bag metric across non-degenerate
	// iterations instead of correcting the full-data fit.
	ModePerFold OptimismMode = "perfold"
)

// IterationRecord captures one bootstrap resample: the drawn index multiset,
// its out-of-bag complement, and both metric summaries. Degenerate folds keep
// their index sets for audit but carry no metrics.
type IterationRecord struct {
	Index        int             `json:"index"`
	InBagIndices []int           `json:"in_bag_indices"`
	OOBIndices   []int           `json:"oob_indices"`
	InBag        metrics.Summary `json:"in_bag"`
	OOB          metrics.Summary `json:"oob"`
	Degenerate   bool            `json:"degenerate"`
	SkipReason   string          `json:"skip_reason,omitempty"`
}

// Estimate is the optimism-corrected view of one metric.
type Estimate struct {
	Apparent  float64 `json:"apparent"`
	Optimism  float64 `json:"optimism"`
	Corrected float64 `json:"corrected"`
}

// Report is the immutable outcome of one validation run.
type Report struct {
	RunID      core.RunID        `json:"run_id"`
	Requested  int               `json:"requested"`  // iterations asked for
	Completed  int               `json:"completed"`  // non-degenerate iterations
	Degenerate int               `json:"degenerate"` // skipped iterations
	Seed       int64             `json:"seed"`
	Mode       OptimismMode      `json:"mode"`
	Iterations []IterationRecord `json:"iterations"`
	ROCAUC     Estimate          `json:"roc_auc"`
	PRAUC      Estimate          `json:"pr_auc"`
	CreatedAt  core.Timestamp    `json:"created_at"`
}
