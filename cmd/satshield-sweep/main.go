// Copyright (C) 2016  Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// The satshield-sweep tool replays synthetic benign/attack traffic
// across a grid of bots/rate/decoys combinations and writes a CSV
// comparing rate-only detection against the full multi-signal score,
// the same sweep a researcher would run to show where a rate-only
// signal collapses and where fan-out recovers it.
package main

import (
	"context"
	"flag"
	"strconv"
	"strings"
	"sync"

	"github.com/aristanetworks/glog"

	"github.com/leosat-net/satshield/internal/satshsync"
	"github.com/leosat-net/satshield/sweep"
)

var (
	botsFlag        = flag.String("bots", "100,500,2000,10000", "Comma-separated bot counts")
	ratesFlag       = flag.String("rates", "100,20,5,1", "Comma-separated per-bot rates in Mbps")
	decoysFlag      = flag.String("decoys", "1,10,100,1000", "Comma-separated decoy counts")
	epochMsFlag     = flag.Int("epoch-ms", 1000, "Epoch length in milliseconds")
	durationMsFlag  = flag.Int("duration-ms", 5000, "Simulated trace duration in milliseconds")
	benignFlowsFlag = flag.Int("benign-flows", 5000, "Number of steady background flows")
	benignMuFlag    = flag.Float64("benign-mu", 4.5, "Mean of the benign flow rate's log-normal distribution")
	benignSigmaFlag = flag.Float64("benign-sigma", 1.0, "Sigma of the benign flow rate's log-normal distribution")
	bitmapBitsFlag  = flag.Int("bitmap-bits", 256, "Fan-out bitmap width in bits")
	alphaFlag       = flag.Float64("alpha", 0.6, "Score weight on byte rate")
	betaFlag        = flag.Float64("beta", 0.3, "Score weight on fan-out")
	gammaFlag       = flag.Float64("gamma", 0.1, "Score weight on persistence")
	persistKFlag    = flag.Int("persist-k", 3, "Persistence clamp")
	queuesFlag      = flag.Int("queues", 4, "Number of mitigation queues")
	decoySampleFlag = flag.Int("decoy-sample", 0, "Decoys sampled per bot (0 = all decoys)")
	warmupFlag      = flag.Int("warmup-epochs", 1, "Epochs excluded from averaged metrics")
	concurrencyFlag = flag.Int64("concurrency", 4, "Maximum number of grid points run concurrently")
	outputFlag      = flag.String("output", "sweep_results.csv", "CSV output path")
)

func parseInts(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			glog.Fatalf("invalid integer %q: %v", part, err)
		}
		out = append(out, v)
	}
	return out
}

func parseFloats(s string) []float64 {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			glog.Fatalf("invalid float %q: %v", part, err)
		}
		out = append(out, v)
	}
	return out
}

func main() {
	flag.Parse()

	params := sweep.Params{
		Bots:         parseInts(*botsFlag),
		Rates:        parseFloats(*ratesFlag),
		Decoys:       parseInts(*decoysFlag),
		EpochMs:      *epochMsFlag,
		DurationMs:   *durationMsFlag,
		BenignFlows:  *benignFlowsFlag,
		BenignMu:     *benignMuFlag,
		BenignSigma:  *benignSigmaFlag,
		BitmapBits:   *bitmapBitsFlag,
		Alpha:        *alphaFlag,
		Beta:         *betaFlag,
		Gamma:        *gammaFlag,
		PersistK:     *persistKFlag,
		Queues:       *queuesFlag,
		DecoySample:  *decoySampleFlag,
		WarmupEpochs: *warmupFlag,
	}

	rows := runBounded(params, *concurrencyFlag)

	if err := sweep.WriteCSV(*outputFlag, rows); err != nil {
		glog.Fatalf("writing sweep results: %v", err)
	}
	glog.Infof("wrote %d sweep rows to %s", len(rows), *outputFlag)
}

// runBounded expands the grid itself (mirroring sweep.Run's nesting
// order) but runs each point as its own goroutine, gated by a weighted
// semaphore, so a large grid can't spin up thousands of detectors at
// once.
func runBounded(p sweep.Params, concurrency int64) []sweep.Row {
	type point struct {
		bots   int
		rate   float64
		decoys int
	}
	var points []point
	for _, b := range p.Bots {
		for _, r := range p.Rates {
			for _, d := range p.Decoys {
				points = append(points, point{b, r, d})
			}
		}
	}

	sem := satshsync.NewWeighted(concurrency)
	rows := make([]sweep.Row, len(points))
	var wg sync.WaitGroup
	for i, pt := range points {
		if err := sem.Acquire(context.Background(), 1); err != nil {
			glog.Fatalf("acquiring sweep concurrency slot: %v", err)
		}
		wg.Add(1)
		go func(i int, pt point) {
			defer wg.Done()
			defer sem.Release(1)
			single := p
			single.Bots = []int{pt.bots}
			single.Rates = []float64{pt.rate}
			single.Decoys = []int{pt.decoys}
			rows[i] = sweep.Run(single)[0]
		}(i, pt)
	}
	wg.Wait()
	return rows
}
