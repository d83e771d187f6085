// Copyright (c) 2024 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

// Package satshsync adapts the weighted semaphore used elsewhere in
// the codebase for bounding how many sweep grid points run
// concurrently, so a large bots/rates/decoys grid doesn't try to
// allocate one detector per point all at once.
package satshsync

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Weighted is a wrapper around golang.org/x/sync/semaphore that tracks
// available weight for callers that want to report it (e.g. a
// progress line showing how many sweep workers are in flight).
type Weighted struct {
	sem           *semaphore.Weighted
	maxWeight     int64
	currentWeight int64
	mu            sync.Mutex
}

// NewWeighted initializes a new weighted semaphore with a given capacity.
func NewWeighted(maxWeight int64) *Weighted {
	return &Weighted{
		sem:           semaphore.NewWeighted(maxWeight),
		maxWeight:     maxWeight,
		currentWeight: maxWeight,
	}
}

// Acquire tries to acquire the specified weight.
func (w *Weighted) Acquire(ctx context.Context, weight int64) error {
	// The mutex is not held while blocking, so Release can proceed.
	err := w.sem.Acquire(ctx, weight)
	if err == nil {
		w.mu.Lock()
		w.currentWeight -= weight
		w.mu.Unlock()
	}
	return err
}

// Release releases the specified weight back to the semaphore.
func (w *Weighted) Release(weight int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sem.Release(weight)
	w.currentWeight += weight
}

// Available returns the current available weight.
func (w *Weighted) Available() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.currentWeight
}
