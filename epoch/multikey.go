// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package epoch

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// KeyMode selects which of the two independent epoch managers a
// MultiKeyManager instantiates.
type KeyMode string

const (
	// KeyModeSrc keys flows by source only.
	KeyModeSrc KeyMode = "src"
	// KeyModeDst keys flows by destination only.
	KeyModeDst KeyMode = "dst"
	// KeyModeSrcDst runs both independently.
	KeyModeSrcDst KeyMode = "src+dst"
)

// MultiResult is the "src"/"dst" result mapping returned by EndEpoch,
// containing only the branches that were configured.
type MultiResult struct {
	Results map[string]Result `json:"results"`
}

// MultiKeyManager runs one or two independent Managers, keyed by src
// and/or dst, and forwards each packet to both with src and other
// swapped accordingly. The two managers share nothing: every data
// structure inside a Manager is exclusively owned by it.
type MultiKeyManager struct {
	cfg     Config
	src     *Manager
	dst     *Manager
	keyMode KeyMode
}

// NewMultiKeyManager validates keyMode and constructs the configured
// manager(s). An unsupported keyMode is a configuration error, reported
// at construction rather than surfacing later as a silent no-op.
func NewMultiKeyManager(cfg Config, keyMode KeyMode) (*MultiKeyManager, error) {
	m := &MultiKeyManager{cfg: cfg, keyMode: keyMode}
	switch keyMode {
	case KeyModeSrc:
		m.src = New(cfg)
	case KeyModeDst:
		m.dst = New(cfg)
	case KeyModeSrcDst:
		m.src = New(cfg)
		m.dst = New(cfg)
	default:
		return nil, fmt.Errorf("epoch: unsupported key_mode %q", keyMode)
	}
	return m, nil
}

// OnPacket forwards (src, dst, size) to whichever manager(s) are
// configured, keyed appropriately: the src manager sees key=src,
// other=dst; the dst manager sees key=dst, other=src. This runs
// sequentially — it is the hot per-packet path and must never suspend.
func (m *MultiKeyManager) OnPacket(src, dst, size uint64) {
	if m.src != nil {
		m.src.OnPacket(src, dst, size)
	}
	if m.dst != nil {
		m.dst.OnPacket(dst, src, size)
	}
}

// EndEpoch closes out both configured managers and returns their
// results keyed by "src"/"dst". When both are configured, they are
// closed out concurrently via errgroup: by the time EndEpoch is called
// no packet is in flight, and the two managers share no state, so
// running them on separate goroutines changes nothing but latency.
func (m *MultiKeyManager) EndEpoch() MultiResult {
	results := make(map[string]Result, 2)
	var srcResult, dstResult Result

	var g errgroup.Group
	if m.src != nil {
		g.Go(func() error {
			srcResult = m.src.EndEpoch()
			return nil
		})
	}
	if m.dst != nil {
		g.Go(func() error {
			dstResult = m.dst.EndEpoch()
			return nil
		})
	}
	// Neither goroutine can return an error; Wait only synchronizes.
	_ = g.Wait()

	if m.src != nil {
		results["src"] = srcResult
	}
	if m.dst != nil {
		results["dst"] = dstResult
	}
	return MultiResult{Results: results}
}
