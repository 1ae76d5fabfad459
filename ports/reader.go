package ports

import (
	"context"

	"plaquerisk/domain/cohort"
)

// CohortReader loads a labeled patient cohort from an external source.
// Implementations guarantee the returned dataset passes Validate.
type CohortReader interface {
	ReadCohort(ctx context.Context, path string) (cohort.Dataset, error)
}
