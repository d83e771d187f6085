// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package satshash

import "testing"

func TestHashDeterministic(t *testing.T) {
	a := Hash(42, 3)
	b := Hash(42, 3)
	if a != b {
		t.Fatalf("Hash is not deterministic: %d != %d", a, b)
	}
}

func TestHashVariesWithSeed(t *testing.T) {
	seen := map[uint32]bool{}
	for seed := uint32(0); seed < 8; seed++ {
		seen[Hash(1000, seed)] = true
	}
	if len(seen) < 6 {
		t.Fatalf("expected mostly-distinct hashes across stage seeds, got %d distinct of 8", len(seen))
	}
}

func TestHashVariesWithKey(t *testing.T) {
	seen := map[uint32]bool{}
	for key := uint64(0); key < 2000; key++ {
		seen[Hash(key, 0)] = true
	}
	if len(seen) < 1900 {
		t.Fatalf("expected low collision rate over 2000 keys, got %d distinct", len(seen))
	}
}
