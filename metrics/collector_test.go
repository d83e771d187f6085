// Copyright (c) 2017 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/leosat-net/satshield/epoch"
	"github.com/leosat-net/satshield/topk"
)

func collect(t *testing.T, c *Collector) []prometheus.Metric {
	t.Helper()
	ch := make(chan prometheus.Metric, 64)
	c.Collect(ch)
	close(ch)
	var out []prometheus.Metric
	for m := range ch {
		out = append(out, m)
	}
	return out
}

func TestObserveThenCollectEmitsPerKeyMetrics(t *testing.T) {
	c := NewCollector()
	c.Observe(epoch.Result{
		HeavyKeys: []topk.Record{{Key: 1, Count: 42}},
		Scores:    map[uint64]float64{1: 0.75},
		QueueMap:  map[uint64]int{1: 3},
	})
	metrics := collect(t, c)
	// 3 per-key gauges (score, queue, count) + 1 epoch counter.
	if len(metrics) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(metrics))
	}
}

func TestObserveReplacesStaleKeys(t *testing.T) {
	c := NewCollector()
	c.Observe(epoch.Result{
		HeavyKeys: []topk.Record{{Key: 1, Count: 1}},
		Scores:    map[uint64]float64{1: 0.1},
		QueueMap:  map[uint64]int{1: 0},
	})
	c.Observe(epoch.Result{}) // key 1 no longer heavy
	metrics := collect(t, c)
	if len(metrics) != 1 {
		t.Fatalf("expected only the epoch counter to remain, got %d metrics", len(metrics))
	}
}

func TestCollectEmitsKeysInSortedOrder(t *testing.T) {
	c := NewCollector()
	c.Observe(epoch.Result{
		HeavyKeys: []topk.Record{{Key: 30, Count: 1}, {Key: 10, Count: 1}, {Key: 20, Count: 1}},
		Scores:    map[uint64]float64{30: 0.1, 10: 0.2, 20: 0.3},
		QueueMap:  map[uint64]int{30: 0, 10: 0, 20: 0},
	})
	metrics := collect(t, c)
	var keyLabels []string
	for _, m := range metrics {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			t.Fatalf("unexpected error writing metric: %v", err)
		}
		for _, l := range pb.GetLabel() {
			if l.GetName() == "key" {
				keyLabels = append(keyLabels, l.GetValue())
			}
		}
	}
	want := []string{"10", "10", "10", "20", "20", "20", "30", "30", "30"}
	if len(keyLabels) != len(want) {
		t.Fatalf("expected %d key labels, got %d: %v", len(want), len(keyLabels), keyLabels)
	}
	for i, v := range want {
		if keyLabels[i] != v {
			t.Fatalf("expected sorted key order %v, got %v", want, keyLabels)
		}
	}
}

func TestDescribeEmitsFourDescriptors(t *testing.T) {
	c := NewCollector()
	ch := make(chan *prometheus.Desc, 8)
	c.Describe(ch)
	close(ch)
	count := 0
	for range ch {
		count++
	}
	if count != 4 {
		t.Fatalf("expected 4 descriptors, got %d", count)
	}
}
