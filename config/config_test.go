// Copyright (c) 2017 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/leosat-net/satshield/fanout"
	"github.com/leosat-net/satshield/queue"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "satshield.yaml")
	if err := ioutil.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTemp(t, `
topk:
  stages: 6
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.TopK.Stages != 6 {
		t.Fatalf("expected explicit stages=6 preserved, got %d", f.TopK.Stages)
	}
	if f.TopK.BucketsPerStage != 2048 {
		t.Fatalf("expected default buckets_per_stage=2048, got %d", f.TopK.BucketsPerStage)
	}
	if f.Fanout.Mode != "bitmap" {
		t.Fatalf("expected default fanout mode bitmap, got %s", f.Fanout.Mode)
	}
	if f.Queue.NumQueues != 4 {
		t.Fatalf("expected default num_queues=4, got %d", f.Queue.NumQueues)
	}
	if f.TopK.HeavyThresholdBytes != defaultHeavyThresholdBytes {
		t.Fatalf("expected default heavy_threshold_bytes=%d, got %d",
			defaultHeavyThresholdBytes, f.TopK.HeavyThresholdBytes)
	}
}

func TestLoadPreservesExplicitHeavyThresholdBytes(t *testing.T) {
	path := writeTemp(t, `
topk:
  heavy_threshold_bytes: 128
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.TopK.HeavyThresholdBytes != 128 {
		t.Fatalf("expected explicit heavy_threshold_bytes=128 preserved, got %d", f.TopK.HeavyThresholdBytes)
	}
}

func TestLoadRejectsUnsupportedKeyMode(t *testing.T) {
	path := writeTemp(t, `
topk:
  key_mode: both
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for unsupported key_mode")
	}
}

func TestLoadRejectsUnsupportedFanoutMode(t *testing.T) {
	path := writeTemp(t, `
fanout:
  mode: minhash
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for unsupported fanout mode")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(os.TempDir(), "does-not-exist.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestEpochConfigWiresThrough(t *testing.T) {
	path := writeTemp(t, `
fanout:
  mode: hll-lite
queue:
  mapping: quantile
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := f.EpochConfig()
	if cfg.Fanout.Mode != fanout.ModeHLLLite {
		t.Fatalf("expected hll-lite mode to carry through, got %s", cfg.Fanout.Mode)
	}
	if cfg.Queue.Mapping != queue.MappingQuantile {
		t.Fatalf("expected quantile mapping to carry through, got %s", cfg.Queue.Mapping)
	}
}
