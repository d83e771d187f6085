// Copyright (c) 2016 Arista Networks, Inc.
// Use of this source code is governed by the Apache License 2.0
// that can be found in the COPYING file.

package traffic

import "container/heap"

type mergeItem struct {
	packet   Packet
	srcIndex int
}

type mergeHeap []mergeItem

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if h[i].packet.TimestampMs != h[j].packet.TimestampMs {
		return h[i].packet.TimestampMs < h[j].packet.TimestampMs
	}
	return h[i].srcIndex < h[j].srcIndex
}
func (h mergeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *mergeHeap) Push(x interface{}) {
	*h = append(*h, x.(mergeItem))
}

func (h *mergeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Merge drains every source in timestamp order, as if all of their
// packets had been interleaved into a single sorted stream; packets with
// equal timestamps come out in source-index order. It is a k-way merge
// over container/heap: each source contributes at most one pending
// packet to the heap at a time, so the heap holds at most len(sources)
// entries. The returned slice holds every packet of every source.
func Merge(sources []Source) []Packet {
	h := make(mergeHeap, 0, len(sources))
	for idx, s := range sources {
		if p, ok := s.Next(); ok {
			h = append(h, mergeItem{packet: p, srcIndex: idx})
		}
	}
	heap.Init(&h)

	var out []Packet
	for h.Len() > 0 {
		item := heap.Pop(&h).(mergeItem)
		out = append(out, item.packet)
		if p, ok := sources[item.srcIndex].Next(); ok {
			heap.Push(&h, mergeItem{packet: p, srcIndex: item.srcIndex})
		}
	}
	return out
}
