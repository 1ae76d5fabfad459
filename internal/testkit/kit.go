// Package testkit provides fixtures shared by tests and by deployments that
// run without external collaborators: in-memory repositories, deterministic
// classifiers, and a synthetic patient cohort generator.
package testkit

import (
	"plaquerisk/domain/cohort"
)

// SmallImbalancedCohort is the canonical tiny fixture: ten patients, two
// positive labels, one numeric marker correlated with the outcome. Small
// enough that degenerate bootstrap folds are common and expected.
func SmallImbalancedCohort() cohort.Dataset {
	ds := cohort.Dataset{Features: []string{"marker", "flag"}}
	markers := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	labels := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1}
	for i, m := range markers {
		ds.Rows = append(ds.Rows, cohort.Profile{
			"marker": cohort.Num(m),
			"flag":   cohort.Bool(m > 5),
		})
		ds.Labels = append(ds.Labels, labels[i])
	}
	return ds
}

// SingleClassCohort has only negative labels; validation must refuse it.
func SingleClassCohort() cohort.Dataset {
	ds := cohort.Dataset{Features: []string{"marker"}}
	for i := 0; i < 6; i++ {
		ds.Rows = append(ds.Rows, cohort.Profile{"marker": cohort.Num(float64(i))})
		ds.Labels = append(ds.Labels, 0)
	}
	return ds
}
