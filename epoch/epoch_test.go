// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package epoch

import (
	"testing"

	"github.com/leosat-net/satshield/fanout"
	"github.com/leosat-net/satshield/queue"
	"github.com/leosat-net/satshield/score"
	"github.com/leosat-net/satshield/topk"
)

func smallConfig() Config {
	return Config{
		TopK:     topk.Config{Stages: 4, BucketsPerStage: 64, HeavyThresholdBytes: 0},
		Fanout:   fanout.Config{Mode: fanout.ModeBitmap, BitmapBits: 256},
		Score:    score.DefaultConfig(),
		Queue:    queue.Config{NumQueues: 4, Mapping: queue.MappingSigmoid},
		EpochMs:  1000,
		PersistK: 3,
	}
}

// TestWarmupEmptiness checks that a key's first heavy epoch scores 0:
// it can't have accrued rate or fan-out since it wasn't yet a
// candidate while those packets arrived.
func TestWarmupEmptiness(t *testing.T) {
	m := New(smallConfig())
	for i := 0; i < 100; i++ {
		m.OnPacket(1, 2, 1000)
	}
	result := m.EndEpoch()
	found := false
	for _, rec := range result.HeavyKeys {
		if rec.Key == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected key 1 to be heavy in the warmup epoch")
	}
	// rate and fanout aren't in Result directly; verify indirectly via
	// the score, which must be 0 for every normalized input of 0.
	if result.Scores[1] != 0 {
		t.Fatalf("expected score 0 in warmup epoch (rate=fanout=0), got %v", result.Scores[1])
	}
}

// TestSingleHotFlowBecomesTopQueueAfterPersistence checks that after
// sustained traffic across several epochs a key is promoted to the
// highest queue the sigmoid mapping can reach for a maximal score. A
// bounded [0,1] score can only ever drive the sigmoid asymptotically
// toward 1, so bucket Q-1 itself is unreachable; see DESIGN.md.
func TestSingleHotFlowBecomesTopQueueAfterPersistence(t *testing.T) {
	m := New(smallConfig())
	for epoch := 0; epoch < 2; epoch++ {
		for i := 0; i < 1000; i++ {
			m.OnPacket(1, 2, 1000)
		}
		_ = m.EndEpoch()
	}
	for i := 0; i < 1000; i++ {
		m.OnPacket(1, 2, 1000)
	}
	result := m.EndEpoch()
	if result.Scores[1] <= 0 {
		t.Fatalf("expected positive score by the third epoch, got %v", result.Scores[1])
	}
	if q := result.QueueMap[1]; q != queue.DefaultConfig().NumQueues-2 {
		t.Fatalf("expected the highest reachable mitigation queue for a sustained hot flow, got %d", q)
	}
}

// TestPersistenceAccumulation checks that a key heavy for 5 consecutive
// epochs has its persistence count clamp at persist_k (3 by default).
func TestPersistenceAccumulation(t *testing.T) {
	m := New(smallConfig())
	for epoch := 0; epoch < 5; epoch++ {
		m.OnPacket(1, 2, 10000)
		m.EndEpoch()
	}
	if got := m.Persist(1); got != 3 {
		t.Fatalf("expected persist clamped at 3, got %d", got)
	}
}

// TestPersistenceDecaysToAbsence checks that a key absent from the
// heavy set for persist_k consecutive epochs is pruned entirely.
func TestPersistenceDecaysToAbsence(t *testing.T) {
	m := New(smallConfig())
	m.OnPacket(1, 2, 10000)
	m.EndEpoch()
	if got := m.Persist(1); got != 1 {
		t.Fatalf("expected persist 1 after first heavy epoch, got %d", got)
	}
	for i := 0; i < 3; i++ {
		m.EndEpoch() // no packets for key 1: it drops out of the heavy set
	}
	if got := m.Persist(1); got != 0 {
		t.Fatalf("expected key 1 pruned from persistence map, got %d", got)
	}
}

// TestCandidateSetGatesFanoutAndBytes covers the invariant that
// BytesMap keys are a subset of CandidateSet: packets for a
// non-candidate key must not accumulate bytes or fan-out.
func TestCandidateSetGatesFanoutAndBytes(t *testing.T) {
	m := New(smallConfig())
	m.OnPacket(1, 2, 10000) // first epoch: key 1 isn't a candidate yet
	first := m.EndEpoch()
	if first.Scores[1] != 0 {
		t.Fatalf("expected 0 score before candidacy, got %v", first.Scores[1])
	}
	m.OnPacket(1, 3, 20000) // now a candidate: bytes/fanout should accrue
	second := m.EndEpoch()
	if second.Scores[1] <= 0 {
		t.Fatalf("expected positive score once key 1 is a candidate, got %v", second.Scores[1])
	}
}

func TestDedupeHeavyTakesMaxCount(t *testing.T) {
	records := []topk.Record{{Key: 1, Count: 5}, {Key: 1, Count: 9}, {Key: 2, Count: 3}}
	deduped := dedupeHeavy(records)
	byKey := make(map[uint64]topk.Record, len(deduped))
	for _, r := range deduped {
		byKey[r.Key] = r
	}
	if byKey[1].Count != 9 {
		t.Fatalf("expected max count 9 for key 1, got %d", byKey[1].Count)
	}
	if len(deduped) != 2 {
		t.Fatalf("expected 2 deduplicated records, got %d", len(deduped))
	}
}

func TestMultiKeyManagerInvalidKeyMode(t *testing.T) {
	if _, err := NewMultiKeyManager(smallConfig(), KeyMode("bogus")); err == nil {
		t.Fatalf("expected an error for an unsupported key_mode")
	}
}

func TestMultiKeyManagerSrcDstSwapSymmetry(t *testing.T) {
	mA, err := NewMultiKeyManager(smallConfig(), KeyModeSrcDst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mB, err := NewMultiKeyManager(smallConfig(), KeyModeSrcDst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 500; i++ {
		mA.OnPacket(100, 200, 1500)
		mB.OnPacket(200, 100, 1500) // swapped src/dst
	}
	rA := mA.EndEpoch()
	rB := mB.EndEpoch()
	// mA's "src" branch (keyed on 100) should match mB's "dst" branch
	// (also keyed on 100), and vice versa.
	if len(rA.Results["src"].HeavyKeys) != len(rB.Results["dst"].HeavyKeys) {
		t.Fatalf("expected symmetric heavy-key counts between swapped managers")
	}
}

func TestMultiKeyManagerOnlySrc(t *testing.T) {
	m, err := NewMultiKeyManager(smallConfig(), KeyModeSrc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.OnPacket(1, 2, 100)
	result := m.EndEpoch()
	if _, ok := result.Results["dst"]; ok {
		t.Fatalf("expected no dst branch when key_mode=src")
	}
	if _, ok := result.Results["src"]; !ok {
		t.Fatalf("expected a src branch when key_mode=src")
	}
}
