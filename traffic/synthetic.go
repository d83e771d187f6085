// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package traffic

import (
	"math"
	"math/rand"
	"sort"
)

// BenignConfig configures a population of steady background flows,
// each with a log-normally distributed rate.
type BenignConfig struct {
	Flows          int
	RateKbpsMu     float64
	RateKbpsSigma  float64
	DurationMs     int
	EpochMs        int
	Seed           int64
}

type staticSource struct {
	packets []Packet
	pos     int
}

func (s *staticSource) Next() (Packet, bool) {
	if s.pos >= len(s.packets) {
		return Packet{}, false
	}
	p := s.packets[s.pos]
	s.pos++
	return p, true
}

// NewBenign builds a Source of steady flows, one packet per flow per
// epoch, sized from a per-flow rate sampled once at construction time.
// Packet timestamps within an epoch are spread evenly across flows so
// a single epoch never arrives as one burst.
func NewBenign(cfg BenignConfig) Source {
	rng := rand.New(rand.NewSource(cfg.Seed))
	const srcBase = uint64(100000)
	const dstBase = uint64(200000)

	flows := make([]FlowKey, cfg.Flows)
	rates := make([]float64, cfg.Flows)
	for i := 0; i < cfg.Flows; i++ {
		flows[i] = FlowKey{Src: srcBase + uint64(i), Dst: dstBase + uint64(i)}
		rates[i] = lognormvariate(rng, cfg.RateKbpsMu, cfg.RateKbpsSigma)
	}

	epochMs := cfg.EpochMs
	if epochMs <= 0 {
		epochMs = 1
	}
	epochCount := cfg.DurationMs / epochMs
	if epochCount < 1 {
		epochCount = 1
	}

	var packets []Packet
	for e := 0; e < epochCount; e++ {
		baseTs := float64(e * epochMs)
		for i, flow := range flows {
			size := int64(rates[i] * 1000 / 8 * (float64(epochMs) / 1000))
			if size <= 0 {
				size = 1
			}
			offset := float64(i) / math.Max(1, float64(cfg.Flows)) * float64(epochMs-1)
			packets = append(packets, Packet{
				TimestampMs: baseTs + offset,
				Src:         flow.Src,
				Dst:         flow.Dst,
				Size:        uint64(size),
				Flow:        flow,
			})
		}
	}
	sort.SliceStable(packets, func(i, j int) bool {
		return packets[i].TimestampMs < packets[j].TimestampMs
	})
	return &staticSource{packets: packets}
}

// lognormvariate draws exp(N(mu, sigma)), matching Python's
// random.lognormvariate.
func lognormvariate(rng *rand.Rand, mu, sigma float64) float64 {
	return math.Exp(mu + sigma*rng.NormFloat64())
}
