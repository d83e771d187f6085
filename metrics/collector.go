// Copyright (c) 2017 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package metrics exposes MS-SatShield's per-key epoch results as
// Prometheus gauges, following the same mutex-protected
// map-of-current-values pattern as cmd/ocprometheus's collector: a
// Collect call never touches the detector directly, it only reads
// back whatever Observe last stored.
package metrics

import (
	"sort"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/maps"

	"github.com/leosat-net/satshield/epoch"
)

var (
	scoreDesc = prometheus.NewDesc(
		"satshield_key_score", "Suspicion score assigned to a key in its last epoch.",
		[]string{"key"}, nil)
	queueDesc = prometheus.NewDesc(
		"satshield_key_queue", "Mitigation queue index assigned to a key in its last epoch.",
		[]string{"key"}, nil)
	countDesc = prometheus.NewDesc(
		"satshield_key_count", "Top-k sketch count observed for a key in its last epoch.",
		[]string{"key"}, nil)
	epochsDesc = prometheus.NewDesc(
		"satshield_epochs_total", "Number of epochs observed since startup.", nil, nil)
)

type keyMetrics struct {
	score float64
	queue float64
	count float64
}

// Collector implements prometheus.Collector over the most recent
// epoch.Result observed via Observe. It holds no reference to any
// Manager: the server decides when an epoch ends and pushes the
// result in, the same separation of concerns as collector.go keeps
// between gNMI subscription updates and Prometheus scrapes.
type Collector struct {
	mu     sync.Mutex
	byKey  map[uint64]keyMetrics
	epochs float64
}

// NewCollector returns an empty Collector ready to register with a
// prometheus.Registry.
func NewCollector() *Collector {
	return &Collector{byKey: make(map[uint64]keyMetrics)}
}

// Observe replaces the collector's view of the world with result,
// discarding whichever keys were heavy in the previous epoch but
// aren't anymore.
func (c *Collector) Observe(result epoch.Result) {
	byKey := make(map[uint64]keyMetrics, len(result.HeavyKeys))
	for _, rec := range result.HeavyKeys {
		byKey[rec.Key] = keyMetrics{
			score: result.Scores[rec.Key],
			queue: float64(result.QueueMap[rec.Key]),
			count: float64(rec.Count),
		}
	}
	c.mu.Lock()
	c.byKey = byKey
	c.epochs++
	c.mu.Unlock()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- scoreDesc
	ch <- queueDesc
	ch <- countDesc
	ch <- epochsDesc
}

// Collect implements prometheus.Collector. Keys are emitted in sorted
// order so that successive scrapes diff cleanly instead of reshuffling
// with Go's randomized map iteration.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := maps.Keys(c.byKey)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, key := range keys {
		m := c.byKey[key]
		label := strconv.FormatUint(key, 10)
		ch <- prometheus.MustNewConstMetric(scoreDesc, prometheus.GaugeValue, m.score, label)
		ch <- prometheus.MustNewConstMetric(queueDesc, prometheus.GaugeValue, m.queue, label)
		ch <- prometheus.MustNewConstMetric(countDesc, prometheus.GaugeValue, m.count, label)
	}
	ch <- prometheus.MustNewConstMetric(epochsDesc, prometheus.CounterValue, c.epochs)
}
