// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package score

import "testing"

func TestPercentile99Empty(t *testing.T) {
	if got := percentile99(nil); got != 1.0 {
		t.Fatalf("expected 1.0 for empty input, got %v", got)
	}
}

func TestPercentile99Index(t *testing.T) {
	values := []float64{10, 1, 5, 3, 2, 9, 8, 7, 6, 4}
	got := percentile99(values)
	// sorted: 1..10, idx = floor(0.99*9) = 8 -> value 9
	if got != 9 {
		t.Fatalf("expected 9 at p99 index, got %v", got)
	}
}

func TestMaxOrEmptyDefault(t *testing.T) {
	if got := maxOr(nil, 1.0); got != 1.0 {
		t.Fatalf("expected default 1.0, got %v", got)
	}
}

func TestNormalizeNonPositiveScale(t *testing.T) {
	if got := normalize(5, 0); got != 0 {
		t.Fatalf("expected 0 for non-positive scale, got %v", got)
	}
	if got := normalize(5, -1); got != 0 {
		t.Fatalf("expected 0 for negative scale, got %v", got)
	}
}

func TestNormalizeClampsAtOne(t *testing.T) {
	if got := normalize(20, 10); got != 1 {
		t.Fatalf("expected clamp to 1, got %v", got)
	}
}

func TestScoreIsWeightedSum(t *testing.T) {
	m := New(DefaultConfig())
	stats := NormStats{RatePercentile99: 100, FanoutPercentile99: 10, PersistMax: 3}
	got := m.Score(50, 5, 3, stats)
	want := 0.6*0.5 + 0.3*0.5 + 0.1*1.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected score %v, got %v", want, got)
	}
}

func TestScoreInRangeWhenNormalizedInputsAtMost1(t *testing.T) {
	m := New(DefaultConfig())
	stats := NormStats{RatePercentile99: 10, FanoutPercentile99: 10, PersistMax: 3}
	got := m.Score(10, 10, 3, stats)
	if got > 1.0+1e-9 {
		t.Fatalf("expected score <= 1, got %v", got)
	}
}
