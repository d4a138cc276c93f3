// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package avlmap

import "github.com/cockroachdb/redact"

// Stats is a point-in-time structural summary of a Map. It contains no keys
// or values, only counters, so the whole struct is safe to log.
type Stats struct {
	// Count is the number of entries.
	Count int
	// Height is the height of the tree: 0 when empty, 1 for a single entry.
	Height int
	// Capacity is the entry limit of a fixed-capacity map, 0 if unbounded.
	Capacity int
	// FreeSlots is the number of node slots that can be filled without
	// allocating: remaining pool slots, or previously released heap slots.
	FreeSlots int
}

// Stats returns a structural summary of the map.
func (m *Map[K, V]) Stats() Stats {
	if m == nil || m.store == nil {
		return Stats{}
	}
	return Stats{
		Count:     m.count,
		Height:    int(m.height(m.root)),
		Capacity:  m.store.capacity(),
		FreeSlots: m.store.freeSlots(),
	}
}

var _ redact.SafeFormatter = Stats{}

// SafeFormat implements redact.SafeFormatter.
func (s Stats) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("count=%d height=%d", redact.Safe(s.Count), redact.Safe(s.Height))
	if s.Capacity > 0 {
		w.Printf(" capacity=%d", redact.Safe(s.Capacity))
	}
	w.Printf(" free=%d", redact.Safe(s.FreeSlots))
}

func (s Stats) String() string {
	return redact.StringWithoutMarkers(s)
}
