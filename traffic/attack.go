// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package traffic

import (
	"math"
	"math/rand"
	"sort"
)

// AttackConfig configures a volumetric fan-out flood: Bots sources
// each spray traffic across a (possibly sampled) subset of Decoys
// destinations between AttackStartMs and AttackEndMs.
type AttackConfig struct {
	Bots            int
	RateMbps        float64
	Decoys          int
	AttackStartMs   int
	AttackEndMs     int
	EpochMs         int
	Seed            int64
	DecoySample     int // 0 means "all decoys"
}

// NewAttack builds a Source modeling a many-to-many flood: every bot
// sends to a sampled subset of decoys at a steady aggregate rate,
// split evenly across that bot's sampled decoys.
func NewAttack(cfg AttackConfig) Source {
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

	sample := cfg.DecoySample
	if sample <= 0 || sample > cfg.Decoys {
		sample = cfg.Decoys
	}

	botDecoys := make(map[uint64][]uint64, cfg.Bots)
	for _, bot := range bots {
		if sample == cfg.Decoys {
			chosen := make([]uint64, len(decoys))
			copy(chosen, decoys)
			botDecoys[bot] = chosen
			continue
		}
		botDecoys[bot] = sampleWithoutReplacement(rng, decoys, sample)
	}

	epochMs := cfg.EpochMs
	if epochMs <= 0 {
		epochMs = 1
	}
	bytesPerBot := cfg.RateMbps * 1e6 / 8 * (float64(epochMs) / 1000)

	var packets []Packet
	for ts := cfg.AttackStartMs; ts < cfg.AttackEndMs; ts += epochMs {
		for botIdx, bot := range bots {
			decoysForBot := botDecoys[bot]
			bytesPerFlow := bytesPerBot / math.Max(1, float64(len(decoysForBot)))
			for decoyIdx, decoy := range decoysForBot {
				size := int64(bytesPerFlow)
				if size <= 0 {
					size = 1
				}
				flow := FlowKey{Src: bot, Dst: decoy}
				offset := (float64(botIdx) + float64(decoyIdx)/math.Max(1, float64(len(decoysForBot)))) /
					math.Max(1, float64(cfg.Bots))
				packets = append(packets, Packet{
					TimestampMs: float64(ts) + offset*float64(epochMs-1),
					Src:         bot,
					Dst:         decoy,
					Size:        uint64(size),
					Flow:        flow,
				})
			}
		}
	}
	sort.SliceStable(packets, func(i, j int) bool {
		return packets[i].TimestampMs < packets[j].TimestampMs
	})
	return &staticSource{packets: packets}
}

func sampleWithoutReplacement(rng *rand.Rand, pool []uint64, n int) []uint64 {
	shuffled := make([]uint64, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
