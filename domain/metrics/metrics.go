// Package metrics computes threshold-free ranking metrics for a binary
// classifier: ROC-AUC via the Mann-Whitney rank statistic and PR-AUC via a
// descending threshold sweep over the precision-recall curve.
package metrics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"

	"plaquerisk/domain/core"
)

// Summary holds both ranking metrics for one (labels, scores) evaluation.
type Summary struct {
	ROCAUC     float64 `json:"roc_auc"`
	PRAUC      float64 `json:"pr_auc"`
	SampleSize int     `json:"sample_size"`
	Positives  int     `json:"positives"`
}

// Computer computes ROC-AUC and PR-AUC from labels and scores. Stateless.
type Computer struct{}

// NewComputer creates a metric computer.
func NewComputer() *Computer {
	return &Computer{}
}

// Compute evaluates both metrics. Labels must be 0/1 and scores probabilities
// aligned with the labels. A single-class label set is not silently mapped to
// a placeholder: it returns a degenerate-fold error so callers can decide how
// to treat the fold.
func (c *Computer) Compute(labels []int, scores []float64) (Summary, error) {
	if len(labels) != len(scores) {
		return Summary{}, fmt.Errorf("labels and scores length mismatch: %d vs %d", len(labels), len(scores))
	}
	if len(labels) == 0 {
		return Summary{}, core.DegenerateFold("empty evaluation set")
	}

	positives := 0
	for _, label := range labels {
		if label == 1 {
			positives++
		}
	}
	negatives := len(labels) - positives
	if positives == 0 || negatives == 0 {
		return Summary{}, core.DegenerateFold("single-class labels")
	}

	return Summary{
		ROCAUC:     rocAUC(labels, scores, positives, negatives),
		PRAUC:      prAUC(labels, scores, positives),
		SampleSize: len(labels),
		Positives:  positives,
	}, nil
}

// rocAUC is the probability a random positive outranks a random negative,
// computed exactly through the Mann-Whitney U statistic. Tied scores between
// a positive and a negative contribute 0.5 via average ranks.
func rocAUC(labels []int, scores []float64, positives, negatives int) float64 {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	// Average ranks within tied groups, then sum the positive ranks.
	rankSum := 0.0
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && scores[order[j]] == scores[order[i]] {
			j++
		}
		// Ranks are 1-based; the tied block [i, j) shares the mean rank.
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if labels[order[k]] == 1 {
				rankSum += avgRank
			}
		}
		i = j
	}

	u := rankSum - float64(positives)*float64(positives+1)/2.0
	return u / (float64(positives) * float64(negatives))
}

// prAUC sweeps the decision threshold over all distinct scores descending and
// integrates precision over recall with the trapezoidal rule. The curve is
// anchored at recall zero with the precision of the strictest threshold so no
// fabricated perfect-precision point inflates the area.
func prAUC(labels []int, scores []float64, positives int) float64 {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	recalls := []float64{0}
	precisions := []float64{0} // placeholder, fixed to the first point below

	tp, fp := 0, 0
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && scores[order[j]] == scores[order[i]] {
			if labels[order[j]] == 1 {
				tp++
			} else {
				fp++
			}
			j++
		}
		recalls = append(recalls, float64(tp)/float64(positives))
		precisions = append(precisions, float64(tp)/float64(tp+fp))
		i = j
	}
	precisions[0] = precisions[1]

	return integrate.Trapezoidal(recalls, precisions)
}
