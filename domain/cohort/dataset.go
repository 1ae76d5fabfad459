// Package cohort models the patient cohort used for training and inference:
// an ordered feature schema, per-patient profiles, and binary outcome labels.
package cohort

import (
	"fmt"

	"plaquerisk/domain/core"
)

// Profile holds one value per feature for a single patient.
type Profile map[string]Value

// Clone returns an independent copy of the profile.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy of the profile with one feature replaced.
func (p Profile) With(feature string, v Value) Profile {
	out := p.Clone()
	out[feature] = v
	return out
}

// MissingFeatures reports which of the given features the profile lacks.
// A present-but-missing observation counts as missing.
func (p Profile) MissingFeatures(features []string) []string {
	var absent []string
	for _, f := range features {
		v, ok := p[f]
		if !ok || v.IsMissing() {
			absent = append(absent, f)
		}
	}
	return absent
}

// Dataset is an ordered sequence of labeled patient profiles sharing one
// feature schema. Labels are binary adverse-outcome indicators.
type Dataset struct {
	Features []string  `json:"features"`
	Rows     []Profile `json:"rows"`
	Labels   []int     `json:"labels"`
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// Validate checks the schema invariants: rows and labels align, every row
// covers the feature schema, and labels are binary.
func (d Dataset) Validate() error {
	if len(d.Rows) != len(d.Labels) {
		return fmt.Errorf("%w: %d rows vs %d labels", core.ErrSchemaMismatch, len(d.Rows), len(d.Labels))
	}
	if len(d.Features) == 0 {
		return fmt.Errorf("%w: empty feature schema", core.ErrSchemaMismatch)
	}
	for i, row := range d.Rows {
		for _, f := range d.Features {
			if _, ok := row[f]; !ok {
				return fmt.Errorf("%w: row %d lacks feature %q", core.ErrSchemaMismatch, i, f)
			}
		}
	}
	for i, label := range d.Labels {
		if label != 0 && label != 1 {
			return fmt.Errorf("%w: label %d at row %d is not binary", core.ErrSchemaMismatch, label, i)
		}
	}
	return nil
}

// Subset builds a dataset from the given row indices. Indices may repeat,
// so a bootstrap in-bag multiset keeps its duplicate draws.
func (d Dataset) Subset(indices []int) Dataset {
	sub := Dataset{
		Features: d.Features,
		Rows:     make([]Profile, 0, len(indices)),
		Labels:   make([]int, 0, len(indices)),
	}
	for _, idx := range indices {
		sub.Rows = append(sub.Rows, d.Rows[idx])
		sub.Labels = append(sub.Labels, d.Labels[idx])
	}
	return sub
}

// LabelCounts returns the number of positive and negative labels.
func (d Dataset) LabelCounts() (positives, negatives int) {
	for _, label := range d.Labels {
		if label == 1 {
			positives++
		} else {
			negatives++
		}
	}
	return positives, negatives
}

// SingleClass reports whether all labels belong to one class.
func (d Dataset) SingleClass() bool {
	pos, neg := d.LabelCounts()
	return pos == 0 || neg == 0
}
