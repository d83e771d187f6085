// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package topk implements the min-displacement top-k sketch described in
// MS-SatShield: S stages of B buckets each, plus one auxiliary row that
// retains a single "victim" candidate per bucket so that flows which
// narrowly lose eviction contention are not lost outright.
package topk

import "github.com/leosat-net/satshield/internal/satshash"

// Record is a candidate flow key and its cumulative byte count for one
// epoch. It lives only inside a stage or auxiliary bucket.
type Record struct {
	Key   uint64
	Count uint64
}

// auxEntry is the auxiliary row's per-bucket state: a resident key, its
// retained byte count (r_cnt) and a decaying "victim" counter (v_cnt)
// that gates replacement.
type auxEntry struct {
	key  uint64
	rCnt uint64
	vCnt int64
}

// Config holds the sketch's dimensions. The zero value is invalid; use
// New with explicit Stages/Buckets, or DefaultConfig for reasonable
// defaults.
type Config struct {
	Stages              int
	BucketsPerStage     int
	HeavyThresholdBytes uint64
}

// DefaultConfig returns reasonable default dimensions (8 stages, 2048
// buckets/stage, threshold 0 — every occupied bucket counts as heavy).
func DefaultConfig() Config {
	return Config{
		Stages:              8,
		BucketsPerStage:     2048,
		HeavyThresholdBytes: 0,
	}
}

// Filter is the displacement sketch plus its auxiliary row. It is not
// safe for concurrent use; each EpochManager owns exactly one.
type Filter struct {
	cfg    Config
	stages [][]*Record
	aux    []*auxEntry
}

// New creates a Filter with the given configuration. Panics if Stages or
// BucketsPerStage is not positive: these are construction-time
// configuration errors, not per-packet failures.
func New(cfg Config) *Filter {
	if cfg.Stages <= 0 || cfg.BucketsPerStage <= 0 {
		panic("topk: Stages and BucketsPerStage must be positive")
	}
	f := &Filter{
		cfg:    cfg,
		stages: make([][]*Record, cfg.Stages),
		aux:    make([]*auxEntry, cfg.BucketsPerStage),
	}
	for s := range f.stages {
		f.stages[s] = make([]*Record, cfg.BucketsPerStage)
	}
	return f
}

func (f *Filter) index(key uint64, stage int) int {
	return int(satshash.Hash(key, uint32(stage)) % uint32(f.cfg.BucketsPerStage))
}

// Update folds one packet's byte count into the sketch. size == 0 is
// accepted: it may still occupy an empty bucket, but never changes any
// aggregate.
func (f *Filter) Update(key uint64, size uint64) {
	cand := Record{Key: key, Count: size}
	for stage := 0; stage < f.cfg.Stages; stage++ {
		idx := f.index(cand.Key, stage)
		bucket := f.stages[stage][idx]
		switch {
		case bucket == nil:
			rec := cand
			f.stages[stage][idx] = &rec
			return
		case bucket.Key == cand.Key:
			bucket.Count += cand.Count
			return
		case bucket.Count < cand.Count:
			f.stages[stage][idx], cand = &Record{Key: cand.Key, Count: cand.Count}, *bucket
		default:
			// candidate unchanged, keep walking stages
		}
	}
	f.auxUpdate(cand)
}

func (f *Filter) auxUpdate(rec Record) {
	idx := f.index(rec.Key, f.cfg.Stages)
	entry := f.aux[idx]
	switch {
	case entry == nil:
		f.aux[idx] = &auxEntry{key: rec.Key, rCnt: rec.Count, vCnt: int64(rec.Count)}
	case entry.key == rec.Key:
		entry.rCnt += rec.Count
		entry.vCnt += int64(rec.Count)
	default:
		entry.vCnt -= int64(rec.Count)
		if entry.vCnt <= 0 {
			entry.key = rec.Key
			entry.rCnt = rec.Count
			entry.vCnt = int64(rec.Count)
		}
	}
}

// Snapshot enumerates every occupied stage bucket whose count is at
// least HeavyThresholdBytes. The auxiliary row is never part of the
// snapshot: it is an eviction log, not a candidate source. The same key
// may appear more than once (once per stage it occupies); callers that
// need one record per key must dedupe, keeping the maximum count seen
// (see epoch.Manager.EndEpoch).
func (f *Filter) Snapshot() []Record {
	var out []Record
	for stage := 0; stage < f.cfg.Stages; stage++ {
		for _, bucket := range f.stages[stage] {
			if bucket == nil {
				continue
			}
			if bucket.Count >= f.cfg.HeavyThresholdBytes {
				out = append(out, *bucket)
			}
		}
	}
	return out
}

// Reset clears every stage bucket and the auxiliary row. After Reset,
// Snapshot returns nil until new packets arrive.
func (f *Filter) Reset() {
	for stage := range f.stages {
		row := f.stages[stage]
		for i := range row {
			row[i] = nil
		}
	}
	for i := range f.aux {
		f.aux[i] = nil
	}
}

// Capacity returns S*B, the maximum number of distinct stage-resident
// keys the sketch can hold at once.
func (f *Filter) Capacity() int {
	return f.cfg.Stages * f.cfg.BucketsPerStage
}
