// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package traffic

import (
	"math"
	"math/rand"
	"sort"
)

// PulseParams describes an on/off duty cycle for a pulsing attack.
type PulseParams struct {
	PeriodMs float64
	OnMs     float64
}

// NewLFADegenerationA models many bots each sending at a comparatively
// low individual rate, spread across the full decoy set — the
// configuration most likely to stay under any single flow's
// heavy-hitter threshold while still accumulating damaging fan-out.
func NewLFADegenerationA(cfg AttackConfig) Source {
	cfg.DecoySample = cfg.Decoys
	return NewAttack(cfg)
}

// NewLFADegenerationB models a decoy fan-out that expands over the
// course of the attack: each bot's sampled decoy set grows linearly
// from a single decoy at AttackStartMs to the full decoy set by
// AttackEndMs, exercising the fan-out estimator's ability to track a
// moving cardinality rather than a fixed one.
func NewLFADegenerationB(cfg AttackConfig) Source {
	rng := rand.New(rand.NewSource(cfg.Seed))
	const botBase = uint64(10000000)
	const decoyBase = uint64(20000000)

	bots := make([]uint64, cfg.Bots)
	for i := range bots {
		bots[i] = botBase + uint64(i)
	}
	decoys := make([]uint64, cfg.Decoys)
	for i := range decoys {
		decoys[i] = decoyBase + uint64(i)
	}

	epochMs := cfg.EpochMs
	if epochMs <= 0 {
		epochMs = 1
	}
	bytesPerBot := cfg.RateMbps * 1e6 / 8 * (float64(epochMs) / 1000)
	span := float64(cfg.AttackEndMs - cfg.AttackStartMs)
	if span <= 0 {
		span = 1
	}

	var packets []Packet
	for ts := cfg.AttackStartMs; ts < cfg.AttackEndMs; ts += epochMs {
		progress := float64(ts-cfg.AttackStartMs) / span
		decoyCount := int(math.Max(1, progress*float64(cfg.Decoys)))
		for botIdx, bot := range bots {
			chosen := sampleWithoutReplacement(rng, decoys, decoyCount)
			bytesPerFlow := bytesPerBot / math.Max(1, float64(len(chosen)))
			for decoyIdx, decoy := range chosen {
				size := int64(bytesPerFlow)
				if size <= 0 {
					size = 1
				}
				offset := (float64(botIdx) + float64(decoyIdx)/math.Max(1, float64(len(chosen)))) /
					math.Max(1, float64(cfg.Bots))
				packets = append(packets, Packet{
					TimestampMs: float64(ts) + offset*float64(epochMs-1),
					Src:         bot,
					Dst:         decoy,
					Size:        uint64(size),
					Flow:        FlowKey{Src: bot, Dst: decoy},
				})
			}
		}
	}
	sort.SliceStable(packets, func(i, j int) bool {
		return packets[i].TimestampMs < packets[j].TimestampMs
	})
	return &staticSource{packets: packets}
}

// NewLFADegenerationC models a pulsing, on/off attack: full-rate
// traffic for pulse.OnMs out of every pulse.PeriodMs, which exercises
// the persistence counter's decay behavior across the off periods.
func NewLFADegenerationC(cfg AttackConfig, pulse PulseParams) Source {
	base := NewAttack(cfg).(*staticSource)
	if pulse.PeriodMs <= 0 {
		return base
	}
	filtered := make([]Packet, 0, len(base.packets))
	for _, p := range base.packets {
		phase := math.Mod(p.TimestampMs-float64(cfg.AttackStartMs), pulse.PeriodMs)
		if phase < pulse.OnMs {
			filtered = append(filtered, p)
		}
	}
	return &staticSource{packets: filtered}
}
