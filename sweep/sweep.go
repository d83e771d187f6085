// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package sweep runs MS-SatShield's bots/rate/decoys separability
// sweep: for each (bots, rate, decoys) triple it replays a synthetic
// benign-plus-attack trace through a fresh MultiKeyManager and records
// how well a rate-only signal (raw heavy-key membership) versus the
// full multi-signal score (top mitigation queue membership) recovers
// the known attack sources and destinations.
package sweep

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/leosat-net/satshield/epoch"
	"github.com/leosat-net/satshield/evalmetrics"
	"github.com/leosat-net/satshield/fanout"
	"github.com/leosat-net/satshield/queue"
	"github.com/leosat-net/satshield/score"
	"github.com/leosat-net/satshield/topk"
	"github.com/leosat-net/satshield/traffic"
)

// Params is the sweep's configuration grid plus the fixed per-run
// knobs that don't vary across the grid.
type Params struct {
	Bots, Decoys []int
	Rates        []float64

	EpochMs     int
	DurationMs  int
	BenignFlows int
	BenignMu    float64
	BenignSigma float64
	BitmapBits  int
	Alpha       float64
	Beta        float64
	Gamma       float64
	PersistK    int
	Queues      int
	DecoySample int
	WarmupEpochs int
}

// Row is one (bots, rate, decoys) grid point's averaged F1 scores.
type Row struct {
	Bots          int
	RateMbps      float64
	Decoys        int
	RateOnlySrcF1 float64
	MultiSrcF1    float64
	RateOnlyDstF1 float64
	MultiDstF1    float64
}

// Run replays the full (bots x rates x decoys) grid and returns one
// Row per combination, in bots-major, rate-second, decoys-minor order.
func Run(p Params) []Row {
	var rows []Row
	for _, bots := range p.Bots {
		for _, rate := range p.Rates {
			for _, decoys := range p.Decoys {
				rows = append(rows, runOne(p, bots, rate, decoys))
			}
		}
	}
	return rows
}

func runOne(p Params, bots int, rate float64, decoys int) Row {
	cfg := epoch.Config{
		TopK:    topk.Config{Stages: 8, BucketsPerStage: 2048},
		Fanout:  fanout.Config{Mode: fanout.ModeBitmap, BitmapBits: p.BitmapBits},
		Score:   score.Config{Alpha: p.Alpha, Beta: p.Beta, Gamma: p.Gamma, PersistK: p.PersistK, NormMode: "p99"},
		Queue:   queue.Config{NumQueues: p.Queues, Mapping: queue.MappingSigmoid},
		EpochMs: p.EpochMs,
		PersistK: p.PersistK,
	}
	detector, err := epoch.NewMultiKeyManager(cfg, epoch.KeyModeSrcDst)
	if err != nil {
		panic(err) // grid parameters are caller-controlled and always valid here
	}

	attackCfg := traffic.AttackConfig{
		Bots: bots, RateMbps: rate, Decoys: decoys,
		AttackStartMs: 0, AttackEndMs: p.DurationMs, EpochMs: p.EpochMs,
		Seed: 7, DecoySample: p.DecoySample,
	}
	benignCfg := traffic.BenignConfig{
		Flows: p.BenignFlows, RateKbpsMu: p.BenignMu, RateKbpsSigma: p.BenignSigma,
		DurationMs: p.DurationMs, EpochMs: p.EpochMs, Seed: 1,
	}

	attackSrcs, attackDsts := attackEndpoints(attackCfg)
	results := runMultiKey(detector, p.EpochMs, []traffic.Source{
		traffic.NewBenign(benignCfg),
		traffic.NewAttack(attackCfg),
	})

	m := averageEpochMetrics(results, attackSrcs, attackDsts, p.Queues, p.WarmupEpochs)
	return Row{
		Bots: bots, RateMbps: rate, Decoys: decoys,
		RateOnlySrcF1: m.rateOnlySrc, MultiSrcF1: m.multiSrc,
		RateOnlyDstF1: m.rateOnlyDst, MultiDstF1: m.multiDst,
	}
}

// runMultiKey mirrors traffic.Runner but drives a MultiKeyManager
// instead of a single-keyed Manager, since the sweep always scores
// both the src and dst branches.
func runMultiKey(detector *epoch.MultiKeyManager, epochMs int, sources []traffic.Source) []epoch.MultiResult {
	packets := traffic.Merge(sources)
	step := float64(epochMs)
	if step <= 0 {
		step = 1
	}

	var results []epoch.MultiResult
	current := 0.0
	for _, pkt := range packets {
		for pkt.TimestampMs >= current+step {
			results = append(results, detector.EndEpoch())
			current += step
		}
		detector.OnPacket(pkt.Src, pkt.Dst, pkt.Size)
	}
	results = append(results, detector.EndEpoch())
	return results
}

// attackEndpoints recomputes the deterministic bot/decoy id ranges
// traffic.NewAttack derives internally, so the sweep can label ground
// truth without NewAttack exposing its internal state.
func attackEndpoints(cfg traffic.AttackConfig) (srcs, dsts []uint64) {
	const botBase = uint64(10000000)
	const decoyBase = uint64(20000000)
	srcs = make([]uint64, cfg.Bots)
	for i := range srcs {
		srcs[i] = botBase + uint64(i)
	}
	dsts = make([]uint64, cfg.Decoys)
	for i := range dsts {
		dsts[i] = decoyBase + uint64(i)
	}
	return srcs, dsts
}

type epochMetrics struct {
	rateOnlySrc, multiSrc, rateOnlyDst, multiDst float64
}

func averageEpochMetrics(results []epoch.MultiResult, truthSrc, truthDst []uint64, numQueues, warmupEpochs int) epochMetrics {
	var rateOnlySrc, multiSrc, rateOnlyDst, multiDst []float64

	for idx, r := range results {
		if idx < warmupEpochs {
			continue
		}
		if src, ok := r.Results["src"]; ok {
			keys := heavyKeys(src)
			_, _, f1 := evalmetrics.PrecisionRecallF1(keys, truthSrc)
			rateOnlySrc = append(rateOnlySrc, f1)
			_, _, f1 = evalmetrics.PrecisionRecallF1(topQueueKeys(src, numQueues), truthSrc)
			multiSrc = append(multiSrc, f1)
		}
		if dst, ok := r.Results["dst"]; ok {
			keys := heavyKeys(dst)
			_, _, f1 := evalmetrics.PrecisionRecallF1(keys, truthDst)
			rateOnlyDst = append(rateOnlyDst, f1)
			_, _, f1 = evalmetrics.PrecisionRecallF1(topQueueKeys(dst, numQueues), truthDst)
			multiDst = append(multiDst, f1)
		}
	}

	return epochMetrics{
		rateOnlySrc: avg(rateOnlySrc),
		multiSrc:    avg(multiSrc),
		rateOnlyDst: avg(rateOnlyDst),
		multiDst:    avg(multiDst),
	}
}

func heavyKeys(r epoch.Result) []uint64 {
	keys := make([]uint64, len(r.HeavyKeys))
	for i, rec := range r.HeavyKeys {
		keys[i] = rec.Key
	}
	return keys
}

func topQueueKeys(r epoch.Result, numQueues int) []uint64 {
	var keys []uint64
	for k, q := range r.QueueMap {
		if q == numQueues-1 {
			keys = append(keys, k)
		}
	}
	return keys
}

func avg(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// WriteCSV writes rows to path, one row per grid point. Using the
// standard library's encoding/csv here is a deliberate choice: this
// is a flat, fixed-width record with no schema evolution or streaming
// requirement, exactly what encoding/csv is for, and no library in the
// dependency set offers anything encoding/csv doesn't already cover
// for this shape of output.
func WriteCSV(path string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"bots", "rate_mbps", "decoys", "rate_only_src_f1", "multi_src_f1", "rate_only_dst_f1", "multi_dst_f1"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Bots),
			strconv.FormatFloat(r.RateMbps, 'g', -1, 64),
			strconv.Itoa(r.Decoys),
			strconv.FormatFloat(r.RateOnlySrcF1, 'g', -1, 64),
			strconv.FormatFloat(r.MultiSrcF1, 'g', -1, 64),
			strconv.FormatFloat(r.RateOnlyDstF1, 'g', -1, 64),
			strconv.FormatFloat(r.MultiDstF1, 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
