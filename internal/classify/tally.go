package classify

import "vlmbench/internal/metadata"

// ConfidenceTally counts label items by their lowConfidence flag.
// A tally is owned by one worker; results are combined with Merge.
type ConfidenceTally struct {
	Low  int `json:"low_confidence"`
	High int `json:"high_confidence"`
}

// Observe counts every item in label.
func (t *ConfidenceTally) Observe(label metadata.LabelRecord) {
	for _, item := range label.Items {
		if item.LowConfidence {
			t.Low++
		} else {
			t.High++
		}
	}
}

// Merge sums a set of per-worker tallies.
func Merge(tallies ...ConfidenceTally) ConfidenceTally {
	var total ConfidenceTally
	for _, t := range tallies {
		total.Low += t.Low
		total.High += t.High
	}
	return total
}
