// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package fanout

import (
	"math"
	"math/bits"

	"github.com/leosat-net/satshield/internal/satshash"
)

// Bitmap is the linear-counting cardinality estimator: one m-bit bitmap
// per candidate key, packed into 64-bit words. No third-party bitset
// library appears anywhere in the corpus this repo is grounded on, and
// a fixed-width bitmap of a few hundred bits has no complexity beyond
// what math/bits already provides, so this one structure is
// deliberately built directly on the standard library (see DESIGN.md).
type Bitmap struct {
	bits  int
	words map[uint64][]uint64
}

// NewBitmap constructs a Bitmap estimator with cfg.BitmapBits bits per
// key (default 256).
func NewBitmap(cfg Config) *Bitmap {
	m := cfg.BitmapBits
	if m <= 0 {
		m = 256
	}
	return &Bitmap{
		bits:  m,
		words: make(map[uint64][]uint64),
	}
}

func wordsFor(bitsWide int) int {
	return (bitsWide + 63) / 64
}

// Update sets the bit H(other) mod m in key's bitmap.
func (b *Bitmap) Update(key, other uint64) {
	row := b.words[key]
	if row == nil {
		row = make([]uint64, wordsFor(b.bits))
		b.words[key] = row
	}
	idx := int(satshash.Hash(other, 0) % uint32(b.bits))
	row[idx/64] |= 1 << uint(idx%64)
}

// Estimate returns the linear-counting estimate -m*ln(z/m), where z is
// the number of unset bits. An all-set bitmap (z == 0) returns m as a
// saturation sentinel. A key never updated returns 0.
func (b *Bitmap) Estimate(key uint64) float64 {
	row, ok := b.words[key]
	if !ok {
		return 0
	}
	var set int
	for _, w := range row {
		set += bits.OnesCount64(w)
	}
	z := b.bits - set
	if z == 0 {
		return float64(b.bits)
	}
	return -float64(b.bits) * math.Log(float64(z)/float64(b.bits))
}

// Reset clears every key's bitmap.
func (b *Bitmap) Reset() {
	b.words = make(map[uint64][]uint64)
}
