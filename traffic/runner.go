// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package traffic

import "github.com/leosat-net/satshield/epoch"

// RunnerConfig bundles the epoch length a Runner drives
// its Manager at.
type RunnerConfig struct {
	EpochMs int
}

// Runner replays a merged packet stream through an epoch.Manager,
// closing out an epoch every time the stream's timestamp crosses an
// epoch boundary — mirroring _merge_sources driving EpochManager in
// lockstep in the Python experiment runner.
type Runner struct {
	detector *epoch.Manager
	cfg      RunnerConfig
}

// NewRunner builds a Runner around detector.
func NewRunner(detector *epoch.Manager, cfg RunnerConfig) *Runner {
	return &Runner{detector: detector, cfg: cfg}
}

// Run merges sources into a single timestamp-ordered stream, feeds
// every packet to the detector, and calls EndEpoch each time the
// stream crosses an epoch boundary. It always calls EndEpoch once
// more at the end to flush the final partial epoch, and always
// returns at least that one result even for an empty packet stream.
func (r *Runner) Run(sources []Source) []epoch.Result {
	packets := Merge(sources)

	epochMs := float64(r.cfg.EpochMs)
	if epochMs <= 0 {
		epochMs = 1
	}

	var results []epoch.Result
	currentEpochMs := 0.0
	for _, p := range packets {
		for p.TimestampMs >= currentEpochMs+epochMs {
			results = append(results, r.detector.EndEpoch())
			currentEpochMs += epochMs
		}
		r.detector.OnPacket(p.Src, p.Dst, p.Size)
	}
	results = append(results, r.detector.EndEpoch())
	return results
}
