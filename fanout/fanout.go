// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package fanout implements the two per-key cardinality estimators used
// to measure a candidate key's fan-out (or fan-in) toward peer keys:
// a linear-counting bitmap and a small, uncorrected HyperLogLog variant
// ("HLL-lite"). Both satisfy the Estimator contract so the epoch
// manager can be configured with either without caring which is in use.
package fanout

// Estimator is the capability both fan-out implementations expose. Only
// candidate keys (those promoted from the previous epoch's heavy set)
// are ever passed to Update; callers gate on candidate membership
// before calling in.
type Estimator interface {
	// Update records that key was observed fanning out to other.
	Update(key, other uint64)
	// Estimate returns the estimated number of distinct peers seen for
	// key so far this epoch. Keys never updated estimate to 0.
	Estimate(key uint64) float64
	// Reset clears all per-key state. Called once per epoch rotation.
	Reset()
}

// Mode selects which Estimator implementation EpochManager constructs.
type Mode string

const (
	// ModeBitmap selects the linear-counting Bitmap estimator.
	ModeBitmap Mode = "bitmap"
	// ModeHLLLite selects the HLLLite estimator.
	ModeHLLLite Mode = "hll-lite"
)

// Config holds the dimensions for both estimator kinds; only the fields
// relevant to the selected Mode are consulted.
type Config struct {
	Mode        Mode
	BitmapBits  int
	HLLP        int
	HLLRegBits  int
}

// DefaultConfig returns reasonable default dimensions: bitmap mode,
// 256-bit bitmaps, p=6 (64 registers), 6-bit registers.
func DefaultConfig() Config {
	return Config{
		Mode:       ModeBitmap,
		BitmapBits: 256,
		HLLP:       6,
		HLLRegBits: 6,
	}
}

// New constructs the Estimator selected by cfg.Mode. Unrecognized modes
// fall back to the bitmap estimator, matching the reference
// implementation's default branch in its mode dispatch.
func New(cfg Config) Estimator {
	if cfg.Mode == ModeHLLLite {
		return NewHLLLite(cfg)
	}
	return NewBitmap(cfg)
}
