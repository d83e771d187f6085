// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package sweep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leosat-net/satshield/internal/satshtest"
)

func smallParams() Params {
	return Params{
		Bots: []int{4}, Rates: []float64{1}, Decoys: []int{2},
		EpochMs: 100, DurationMs: 300,
		BenignFlows: 2, BenignMu: 2, BenignSigma: 0.1,
		BitmapBits: 256, Alpha: 0.6, Beta: 0.3, Gamma: 0.1,
		PersistK: 3, Queues: 4, WarmupEpochs: 0,
	}
}

func TestRunProducesOneRowPerGridPoint(t *testing.T) {
	rows := Run(smallParams())
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for a 1x1x1 grid, got %d", len(rows))
	}
	row := rows[0]
	if row.Bots != 4 || row.Decoys != 2 || row.RateMbps != 1 {
		t.Fatalf("unexpected row identity: %+v", row)
	}
}

func TestRunF1ScoresInRange(t *testing.T) {
	rows := Run(smallParams())
	row := rows[0]
	for _, f1 := range []float64{row.RateOnlySrcF1, row.MultiSrcF1, row.RateOnlyDstF1, row.MultiDstF1} {
		if f1 < 0 || f1 > 1 {
			t.Fatalf("expected F1 in [0,1], got %v", f1)
		}
	}
}

func TestWriteCSVRoundTrips(t *testing.T) {
	rows := Run(smallParams())
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.csv")
	if err := WriteCSV(path, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if len(body) == 0 {
		t.Fatalf("expected non-empty CSV output")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	a := Run(smallParams())[0]
	b := Run(smallParams())[0]
	if d := satshtest.Diff(a, b); d != "" {
		t.Fatalf("expected two runs of the same params to agree, but %s", d)
	}
}

func TestWriteCSVNoOpOnEmptyRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.csv")
	if err := WriteCSV(path, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected no file to be created for empty rows")
	}
}
