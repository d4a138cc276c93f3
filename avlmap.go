// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package avlmap provides an ordered map backed by a height-balanced (AVL)
// binary search tree.
//
// Keys are ordered by a caller-supplied comparator. Nodes carry parent
// back-references, which makes bidirectional in-order iteration possible
// without auxiliary state. Node memory comes from one of two interchangeable
// stores: a growable heap slab, or a fixed-capacity pool for callers that
// need a hard bound on memory.
//
// Optional ownership hooks let the map hold independent clones of keys and
// values and release them when entries are removed; without hooks the map
// stores what the caller passes and never releases it.
//
// A Map is not safe for concurrent use. Callers requiring concurrent access
// must provide their own synchronization.
package avlmap // import "github.com/cockroachdb/avlmap"

import (
	"github.com/cockroachdb/errors"
)

// Compare is a total order over keys. It returns a negative number if a
// sorts before b, zero if they are equal, and a positive number otherwise.
type Compare[K any] func(a, b K) int

var (
	// ErrExists is returned by Insert when the key is already present. The
	// map is unchanged.
	ErrExists = errors.New("avlmap: key already exists")
	// ErrClosed is returned by mutating operations on a closed or nil Map.
	ErrClosed = errors.New("avlmap: closed")
)

// Map is an ordered associative container. The zero value is not usable;
// construct with New. Methods on a nil *Map are safe no-ops that return
// neutral results.
type Map[K, V any] struct {
	store nodeStore[K, V]
	cmp   Compare[K]
	root  uint32
	count int

	fixedCapacity int

	keyClone   func(K) K
	keyRelease func(K)
	valClone   func(V) V
	valRelease func(V)
}

// Option configures a Map at construction time.
type Option[K, V any] func(*Map[K, V])

// WithKeyOwnership configures key ownership. If clone is non-nil every
// stored key is clone(k) rather than the caller's k; if release is non-nil
// it is invoked on the stored key when its entry is erased, cleared, or the
// map is closed. Without ownership the caller must keep its keys valid for
// the lifetime of the map.
func WithKeyOwnership[K, V any](clone func(K) K, release func(K)) Option[K, V] {
	return func(m *Map[K, V]) {
		m.keyClone = clone
		m.keyRelease = release
	}
}

// WithValueOwnership configures value ownership with the same contract as
// WithKeyOwnership. Put additionally releases the prior value before storing
// its replacement.
func WithValueOwnership[K, V any](clone func(V) V, release func(V)) Option[K, V] {
	return func(m *Map[K, V]) {
		m.valClone = clone
		m.valRelease = release
	}
}

// WithCapacity bounds the map at n entries, backed by a fixed pool allocated
// up front. Inserting into a full map fails with ErrPoolExhausted. Without
// this option the map grows on demand.
func WithCapacity[K, V any](n int) Option[K, V] {
	return func(m *Map[K, V]) {
		m.fixedCapacity = n
	}
}

// New constructs an empty Map ordered by cmp.
func New[K, V any](cmp Compare[K], opts ...Option[K, V]) (*Map[K, V], error) {
	if cmp == nil {
		return nil, errors.New("avlmap: nil comparator")
	}
	m := &Map[K, V]{cmp: cmp}
	for _, opt := range opts {
		opt(m)
	}
	if m.fixedCapacity < 0 {
		return nil, errors.Errorf("avlmap: invalid capacity %d", m.fixedCapacity)
	}
	if m.fixedCapacity > 0 {
		m.store = newPoolStore[K, V](m.fixedCapacity)
	} else {
		m.store = newHeapStore[K, V]()
	}
	return m, nil
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return m.count
}

// Insert adds key→value if key is not already present. It returns ErrExists
// if the key is present (the stored value is untouched), or ErrPoolExhausted
// if a fixed-capacity map is full. Failure leaves the map unchanged.
func (m *Map[K, V]) Insert(key K, value V) error {
	if m == nil || m.store == nil {
		return ErrClosed
	}
	var parent uint32
	goLeft := false
	for h := m.root; h != nilNode; {
		n := m.store.node(h)
		c := m.cmp(key, n.key)
		if c == 0 {
			return ErrExists
		}
		parent = h
		if goLeft = c < 0; goLeft {
			h = n.left
		} else {
			h = n.right
		}
	}

	// Allocate before cloning so that pool exhaustion costs nothing.
	nh, err := m.store.alloc()
	if err != nil {
		return err
	}
	// The alloc above may have grown the slab; re-derive any node pointers.
	n := m.store.node(nh)
	n.key = m.cloneKey(key)
	n.value = m.cloneValue(value)
	n.parent = parent
	if parent == nilNode {
		m.root = nh
	} else if p := m.store.node(parent); goLeft {
		p.left = nh
	} else {
		p.right = nh
	}
	m.count++
	m.rebalancePath(parent)
	m.maybeCheckInvariants()
	return nil
}

// Put adds key→value, replacing the stored value if the key is already
// present. It reports whether a replacement took place. Replacement releases
// the prior value (if value ownership is configured) and never changes the
// tree shape.
func (m *Map[K, V]) Put(key K, value V) (replaced bool, _ error) {
	if m == nil || m.store == nil {
		return false, ErrClosed
	}
	if h := m.findNode(key); h != nilNode {
		n := m.store.node(h)
		if m.valRelease != nil {
			m.valRelease(n.value)
		}
		n.value = m.cloneValue(value)
		return true, nil
	}
	return false, m.Insert(key, value)
}

// Get returns the value stored for key, and whether the key is present. A
// miss is normal control flow, not an error.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if m == nil || m.store == nil {
		var zero V
		return zero, false
	}
	h := m.findNode(key)
	if h == nilNode {
		var zero V
		return zero, false
	}
	return m.store.node(h).value, true
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	if m == nil || m.store == nil {
		return false
	}
	return m.findNode(key) != nilNode
}

// Delete removes the entry for key, releasing its key and value per the
// configured ownership. It reports whether an entry was removed.
func (m *Map[K, V]) Delete(key K) bool {
	if m == nil || m.store == nil {
		return false
	}
	h := m.findNode(key)
	if h == nilNode {
		return false
	}
	n := m.store.node(h)

	if n.left != nilNode && n.right != nilNode {
		// Two children: exchange payloads with the in-order successor (the
		// minimum of the right subtree) and remove the successor position
		// instead. The successor has no left child by construction, so the
		// removal below always splices at most one child.
		s := m.subtreeMin(n.right)
		sn := m.store.node(s)
		n.key, sn.key = sn.key, n.key
		n.value, sn.value = sn.value, n.value
		h, n = s, sn
	}

	child := n.left
	if child == nilNode {
		child = n.right
	}
	parent := n.parent
	m.replaceChild(parent, h, child)

	if m.keyRelease != nil {
		m.keyRelease(n.key)
	}
	if m.valRelease != nil {
		m.valRelease(n.value)
	}
	m.store.release(h)
	m.count--
	m.rebalancePath(parent)
	m.maybeCheckInvariants()
	return true
}

// Clear removes all entries, releasing keys and values per the configured
// ownership. The map remains usable.
func (m *Map[K, V]) Clear() {
	if m == nil || m.store == nil {
		return
	}
	m.freeSubtree(m.root)
	m.root = nilNode
	m.count = 0
}

// Close clears the map and releases its storage. Operations on a closed map
// behave as on a nil map.
func (m *Map[K, V]) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	m.Clear()
	m.store = nil
	return nil
}

func (m *Map[K, V]) cloneKey(k K) K {
	if m.keyClone != nil {
		return m.keyClone(k)
	}
	return k
}

func (m *Map[K, V]) cloneValue(v V) V {
	if m.valClone != nil {
		return m.valClone(v)
	}
	return v
}
