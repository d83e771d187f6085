// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package satshash implements the seedable integer hash primitive shared by
// the top-k filter and the fan-out estimators.
//
// The reference implementation this repo is derived from hashed (key, seed)
// tuples through the ambient language hash, which is implicitly randomized
// per-process in some runtimes and silently invalidates comparative
// experiments across runs. That behavior is deliberately not replicated
// here: Hash is a pure function of its inputs.
package satshash

// mix64 is the splitmix64 finalizer (Steele, Lea & Flood, 2014). It is
// used here purely as a bit mixer, not as a stream generator.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// goldenGamma is splitmix64's odd increment constant, used here to spread
// the seed across the key's bits before mixing rather than to advance a
// sequence.
const goldenGamma = 0x9e3779b97f4a7c15

// Hash returns a uniform 32-bit hash of (key, seed). Distinct seeds are
// intended to behave as independent stage hashes of the same key: the
// seed is folded in via multiplication by goldenGamma before mixing so
// that nearby seeds (0, 1, 2, ... as used for sketch stages) do not
// produce correlated low bits.
func Hash(key uint64, seed uint32) uint32 {
	h := mix64(key ^ (uint64(seed) * goldenGamma))
	return uint32(h>>32) ^ uint32(h)
}
