// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package score fuses per-key rate, fan-out and persistence features
// into a single suspicion score.
package score

import "sort"

// NormStats are the per-epoch normalization scales: the 99th
// percentile of rate and fanout across this epoch's heavy keys, and
// the maximum observed persistence.
type NormStats struct {
	RatePercentile99   float64
	FanoutPercentile99 float64
	PersistMax         float64
}

// Config holds the score model's weights and persistence clamp.
// NormMode is accepted for forward compatibility with config files
// ("p99", "max", "zscore") but only "p99" is implemented here; any
// other value is silently treated as "p99" by Model (the config loader
// is responsible for warning about unsupported modes — see
// config.Load).
type Config struct {
	Alpha     float64
	Beta      float64
	Gamma     float64
	PersistK  int
	NormMode  string
}

// DefaultConfig returns reasonable default weights (0.6/0.3/0.1) and
// persist_k=3.
func DefaultConfig() Config {
	return Config{
		Alpha:    0.6,
		Beta:     0.3,
		Gamma:    0.1,
		PersistK: 3,
		NormMode: "p99",
	}
}

// Model computes NormStats and per-key scores from a Config.
type Model struct {
	cfg Config
}

// New constructs a Model from cfg.
func New(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// ComputeStats computes the epoch's normalization stats from the raw
// rate, fanout and persist columns of every heavy key this epoch.
func (m *Model) ComputeStats(rates, fanouts, persists []float64) NormStats {
	return NormStats{
		RatePercentile99:   percentile99(rates),
		FanoutPercentile99: percentile99(fanouts),
		PersistMax:         maxOr(persists, 1.0),
	}
}

// Score fuses one key's (rate, fanout, persist) triple against stats
// into a single suspicion score: alpha*nr + beta*nf + gamma*np.
func (m *Model) Score(rate, fanout, persist float64, stats NormStats) float64 {
	nr := normalize(rate, stats.RatePercentile99)
	nf := normalize(fanout, stats.FanoutPercentile99)
	np := normalize(persist, stats.PersistMax)
	return m.cfg.Alpha*nr + m.cfg.Beta*nf + m.cfg.Gamma*np
}

// percentile99 returns the value at index floor(0.99*(n-1)) of values
// sorted ascending, or 1.0 when values is empty.
func percentile99(values []float64) float64 {
	if len(values) == 0 {
		return 1.0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(0.99 * float64(len(sorted)-1))
	return sorted[idx]
}

func maxOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func normalize(v, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	if v/scale > 1 {
		return 1
	}
	return v / scale
}
