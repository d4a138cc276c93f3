// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package avlmap

import (
	"github.com/cockroachdb/avlmap/internal/invariants"
	"github.com/cockroachdb/errors"
)

// ErrPoolExhausted is returned by mutating operations on a fixed-capacity
// map that has no free slots left. The map is unchanged.
var ErrPoolExhausted = errors.New("avlmap: node pool exhausted")

// nilNode is the reserved handle meaning "no node". Slot 0 of every slab
// stays zeroed and is never handed out.
const nilNode uint32 = 0

// node is a single entry slot. Links are slab indices rather than pointers
// so that no rotation or splice can leave a dangling reference.
type node[K, V any] struct {
	key   K
	value V
	left  uint32
	right uint32
	// parent is the back-reference to the parent node; free slots reuse it
	// as the free-list link.
	parent uint32
	// height is 1+max(child heights) while occupied, 0 while free.
	height int32
}

// nodeStore owns node memory. The tree algorithms are written once against
// this capability and run unchanged over either strategy.
type nodeStore[K, V any] interface {
	// alloc returns the handle of a fresh slot with height 1 and nil links.
	// It may grow the underlying slab: handles stay valid across alloc,
	// node pointers do not.
	alloc() (uint32, error)
	// release returns a slot to the store, clearing its key and value so no
	// references are retained.
	release(h uint32)
	// node dereferences a handle. The pointer is valid until the next alloc.
	node(h uint32) *node[K, V]
	// capacity returns the slot limit, or 0 if the store is unbounded.
	capacity() int
	// freeSlots returns the number of slots available without growing.
	freeSlots() int
}

// heapStore grows its slab on demand and never fails to allocate. Released
// slots are kept on an intrusive free list and reused before the slab grows
// again.
type heapStore[K, V any] struct {
	slab  []node[K, V]
	free  uint32
	nfree int
}

func newHeapStore[K, V any]() *heapStore[K, V] {
	// Slot 0 is the nil sentinel.
	return &heapStore[K, V]{slab: make([]node[K, V], 1)}
}

func (s *heapStore[K, V]) alloc() (uint32, error) {
	if s.free != nilNode {
		h := s.free
		n := &s.slab[h]
		s.free = n.parent
		n.parent = nilNode
		n.height = 1
		s.nfree--
		return h, nil
	}
	s.slab = append(s.slab, node[K, V]{height: 1})
	return uint32(len(s.slab) - 1), nil
}

func (s *heapStore[K, V]) release(h uint32) {
	invariants.CheckBounds(int(h)-1, len(s.slab)-1)
	s.slab[h] = node[K, V]{parent: s.free}
	s.free = h
	s.nfree++
}

func (s *heapStore[K, V]) node(h uint32) *node[K, V] {
	invariants.CheckBounds(int(h), len(s.slab))
	return &s.slab[h]
}

func (s *heapStore[K, V]) capacity() int { return 0 }

func (s *heapStore[K, V]) freeSlots() int { return s.nfree }

// poolStore is a fixed-capacity slab allocated up front. Every slot sits on
// the free list, making allocation and release O(1); alloc fails with
// ErrPoolExhausted when the list is empty. Nothing is allocated after
// construction.
type poolStore[K, V any] struct {
	slab  []node[K, V]
	free  uint32
	nfree int
}

func newPoolStore[K, V any](capacity int) *poolStore[K, V] {
	s := &poolStore[K, V]{slab: make([]node[K, V], capacity+1)}
	// Link slots so the lowest index is handed out first.
	for i := len(s.slab) - 1; i >= 1; i-- {
		s.slab[i].parent = s.free
		s.free = uint32(i)
		s.nfree++
	}
	return s
}

func (s *poolStore[K, V]) alloc() (uint32, error) {
	if s.free == nilNode {
		return nilNode, ErrPoolExhausted
	}
	h := s.free
	n := &s.slab[h]
	s.free = n.parent
	n.parent = nilNode
	n.height = 1
	s.nfree--
	return h, nil
}

func (s *poolStore[K, V]) release(h uint32) {
	invariants.CheckBounds(int(h)-1, len(s.slab)-1)
	s.slab[h] = node[K, V]{parent: s.free}
	s.free = h
	s.nfree++
}

func (s *poolStore[K, V]) node(h uint32) *node[K, V] {
	invariants.CheckBounds(int(h), len(s.slab))
	return &s.slab[h]
}

func (s *poolStore[K, V]) capacity() int { return len(s.slab) - 1 }

func (s *poolStore[K, V]) freeSlots() int { return s.nfree }
