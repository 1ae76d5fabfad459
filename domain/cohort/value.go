package cohort

import (
	"fmt"
	"strconv"
)

// Kind discriminates the value types a clinical feature can hold.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindBool
	KindCategory
)

// Value is one feature observation: numeric, boolean, categorical, or missing.
type Value struct {
	Kind     Kind    `json:"kind"`
	Number   float64 `json:"number,omitempty"`
	Flag     bool    `json:"flag,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Missing is the canonical absent observation.
var Missing = Value{Kind: KindMissing}

// Num constructs a numeric value.
func Num(v float64) Value { return Value{Kind: KindNumber, Number: v} }

// Bool constructs a boolean value.
func Bool(v bool) Value { return Value{Kind: KindBool, Flag: v} }

// Cat constructs a categorical value.
func Cat(v string) Value { return Value{Kind: KindCategory, Category: v} }

// IsMissing reports whether the observation is absent.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// Key returns a stable string form usable for mode counting and display.
func (v Value) Key() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Flag)
	case KindCategory:
		return v.Category
	default:
		return "missing"
	}
}

// Display renders the value for human-facing output.
func (v Value) Display() string {
	switch v.Kind {
	case KindNumber:
		if v.Number == float64(int64(v.Number)) {
			return strconv.FormatInt(int64(v.Number), 10)
		}
		return fmt.Sprintf("%.2f", v.Number)
	case KindBool:
		if v.Flag {
			return "yes"
		}
		return "no"
	case KindCategory:
		return v.Category
	default:
		return "missing"
	}
}
