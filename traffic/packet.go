// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package traffic models packet streams for driving and evaluating
// MS-SatShield's epoch manager outside of live ingestion: synthetic
// benign/attack generators, a timestamp-ordered multi-source merge,
// and a runner that replays packets through an epoch.Manager the same
// way a trace-replay ingest client would.
package traffic

// FlowKey identifies a unidirectional flow by its endpoints.
type FlowKey struct {
	Src uint64
	Dst uint64
}

// Packet is one simulated or replayed packet event.
type Packet struct {
	TimestampMs float64
	Src         uint64
	Dst         uint64
	Size        uint64
	Flow        FlowKey
}

// Source produces packets in non-decreasing timestamp order. Next
// returns ok=false once the source is exhausted; callers must stop
// calling Next after that.
type Source interface {
	Next() (Packet, bool)
}
