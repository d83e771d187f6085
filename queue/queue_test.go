// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package queue

import "testing"

func TestSigmoidMonotone(t *testing.T) {
	m := New(Config{NumQueues: 4, Mapping: MappingSigmoid})
	prev := -1
	for s := 0.0; s <= 1.0; s += 0.01 {
		q := m.MapScore(s)
		if q < prev {
			t.Fatalf("sigmoid mapping not monotone at score %v: %d < %d", s, q, prev)
		}
		prev = q
	}
}

func TestSigmoidHighScoreNearsTopQueue(t *testing.T) {
	m := New(Config{NumQueues: 4, Mapping: MappingSigmoid})
	if got := m.MapScore(0.95); got != 2 {
		t.Fatalf("expected bucket 2 for a high score under a 4-queue sigmoid, got %d", got)
	}
}

func TestQuantileMonotone(t *testing.T) {
	m := New(Config{NumQueues: 4, Mapping: MappingQuantile})
	scores := []float64{0.1, 0.9, 0.2, 0.8, 0.3, 0.7, 0.4, 0.6, 0.5}
	m.Update(scores)
	prev := -1
	for _, s := range []float64{0.05, 0.15, 0.25, 0.35, 0.45, 0.55, 0.65, 0.75, 0.85, 0.95} {
		q := m.MapScore(s)
		if q < prev {
			t.Fatalf("quantile mapping not monotone at score %v: %d < %d", s, q, prev)
		}
		prev = q
	}
}

func TestQuantileThresholdsMatchSpec(t *testing.T) {
	scores := []float64{5, 1, 4, 2, 3}
	got := quantileThresholds(scores, 5)
	// sorted: 1,2,3,4,5 (n=5); thresholds at idx = floor(q*5/5) for q=1..4 -> 1,2,3,4
	want := []float64{2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %d thresholds, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("threshold[%d]: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestQuantileUpdateNoOpUnderSigmoid(t *testing.T) {
	m := New(Config{NumQueues: 4, Mapping: MappingSigmoid})
	m.Update([]float64{0.1, 0.9})
	if m.thresholds != nil {
		t.Fatalf("expected no thresholds under sigmoid mapping")
	}
}

func TestQuantileEmptyScoresFallsBackToTopQueue(t *testing.T) {
	m := New(Config{NumQueues: 3, Mapping: MappingQuantile})
	m.Update(nil)
	if got := m.MapScore(0.5); got != 2 {
		t.Fatalf("expected top queue with no thresholds, got %d", got)
	}
}
