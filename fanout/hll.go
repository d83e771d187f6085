// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package fanout

import (
	"math"
	"math/bits"

	"github.com/leosat-net/satshield/internal/satshash"
)

// HLLLite is HyperLogLog without the small-range or large-range
// corrections: registers saturate and are read back exactly as
// Estimate computes them, deliberately uncorrected so estimates stay
// comparable across runs regardless of cardinality regime.
type HLLLite struct {
	p       int
	m       int
	regBits int
	alpha   float64
	regs    map[uint64][]uint8
}

// NewHLLLite constructs an HLL-lite estimator with m = 2^p registers of
// cfg.HLLRegBits bits each (defaults p=6, regBits=6).
func NewHLLLite(cfg Config) *HLLLite {
	p := cfg.HLLP
	if p <= 0 {
		p = 6
	}
	regBits := cfg.HLLRegBits
	if regBits <= 0 {
		regBits = 6
	}
	m := 1 << uint(p)
	return &HLLLite{
		p:       p,
		m:       m,
		regBits: regBits,
		alpha:   alphaFor(m),
		regs:    make(map[uint64][]uint8),
	}
}

func alphaFor(m int) float64 {
	switch m {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	default:
		return 0.7213 / (1 + 1.079/float64(m))
	}
}

// rho returns the position of the leading 1 bit of value within the
// given width, counting from 1; a zero value saturates at width+1.
func rho(value uint64, width int) int {
	if value == 0 {
		return width + 1
	}
	// bits.Len64 returns the index of the highest set bit (1-based from
	// the low end); the leading-1 rank within `width` bits is therefore
	// width - (bits.Len64(value) - 1).
	return width - bits.Len64(value) + 1
}

// Update hashes other, splits the hash into a bucket j = y & (m-1) and a
// tail w = y >> p, and raises register j to rho(w, 32-p) if larger.
func (h *HLLLite) Update(key, other uint64) {
	regs := h.regs[key]
	if regs == nil {
		regs = make([]uint8, h.m)
		h.regs[key] = regs
	}
	y := satshash.Hash(other, 0)
	j := uint64(y) & uint64(h.m-1)
	w := uint64(y) >> uint(h.p)
	rank := rho(w, 32-h.p)
	if rank > int(regs[j]) {
		regs[j] = uint8(rank)
	}
}

// Estimate returns alpha * m^2 / sum(2^-r_j). A key with no registers
// populated (never updated) returns 0.
func (h *HLLLite) Estimate(key uint64) float64 {
	regs, ok := h.regs[key]
	if !ok {
		return 0
	}
	var invSum float64
	for _, r := range regs {
		invSum += math.Exp2(-float64(r))
	}
	if invSum == 0 {
		return 0
	}
	return h.alpha * float64(h.m) * float64(h.m) / invSum
}

// Reset clears every key's registers.
func (h *HLLLite) Reset() {
	h.regs = make(map[uint64][]uint8)
}
