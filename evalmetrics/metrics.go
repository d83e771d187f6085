// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package evalmetrics scores detector output against ground truth for
// offline evaluation: precision/recall/F1 over predicted vs. true
// heavy-key sets, average relative error between fan-out estimates
// and exact cardinalities, detector reaction time, and the
// throughput drop a mitigation decision achieved.
package evalmetrics

// PrecisionRecallF1 compares a predicted key set against ground truth
// and returns (precision, recall, F1). Both slices may contain
// duplicates; they're treated as sets.
func PrecisionRecallF1(pred, truth []uint64) (precision, recall, f1 float64) {
	predSet := toSet(pred)
	truthSet := toSet(truth)

	tp := 0
	for k := range predSet {
		if _, ok := truthSet[k]; ok {
			tp++
		}
	}
	fp := len(predSet) - tp
	fn := len(truthSet) - tp

	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

func toSet(keys []uint64) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// AverageRelativeError returns the mean of |estimate-truth|/truth over
// every paired entry whose truth is nonzero. Returns 0 if the slices
// are empty, mismatched in length, or every truth value is zero.
func AverageRelativeError(estimates, truths []float64) float64 {
	if len(estimates) == 0 || len(estimates) != len(truths) {
		return 0
	}
	var sum float64
	var n int
	for i, est := range estimates {
		truth := truths[i]
		if truth == 0 {
			continue
		}
		sum += abs(est-truth) / truth
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// ReactionTime returns how long after attackStartMs the detector
// raised its first mitigation decision, clamped at 0 (a mitigation
// issued before the labeled attack start scores as instantaneous).
func ReactionTime(attackStartMs, mitigationStartMs float64) float64 {
	d := mitigationStartMs - attackStartMs
	if d < 0 {
		return 0
	}
	return d
}

// ThroughputDrop returns the fractional drop in throughput from
// before to during mitigation, clamped to [0, 1]. Returns 0 if before
// is non-positive (nothing to compare against).
func ThroughputDrop(before, during float64) float64 {
	if before <= 0 {
		return 0
	}
	drop := (before - during) / before
	if drop < 0 {
		return 0
	}
	if drop > 1 {
		return 1
	}
	return drop
}
