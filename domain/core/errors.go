package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions for the evaluation core.
var (
	// ErrDegenerateFold marks a single bootstrap iteration whose out-of-bag
	// set is empty or whose labels collapse to one class. Recovered locally
	// by excluding the iteration from aggregation.
	ErrDegenerateFold = errors.New("degenerate fold")

	// ErrInsufficientData means every iteration was degenerate or the
	// dataset is too small to bootstrap meaningfully. Fatal for the run.
	ErrInsufficientData = errors.New("insufficient data for validation")

	// ErrMissingFeature means a prediction request omits a required feature.
	// Surfaced before the explainer runs, never silently imputed.
	ErrMissingFeature = errors.New("missing required feature")

	// ErrSchemaMismatch means a row does not share the dataset feature schema.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
)

// DegenerateFold wraps ErrDegenerateFold with the reason the fold was skipped.
func DegenerateFold(reason string) error {
	return fmt.Errorf("%w: %s", ErrDegenerateFold, reason)
}

// MissingFeature wraps ErrMissingFeature with the offending feature names.
func MissingFeature(names ...string) error {
	return fmt.Errorf("%w: %v", ErrMissingFeature, names)
}

// IsDegenerateFold reports whether err is a degenerate-fold condition.
func IsDegenerateFold(err error) bool {
	return errors.Is(err, ErrDegenerateFold)
}
