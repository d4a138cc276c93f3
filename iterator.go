// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package avlmap

// Iterator is a cursor over the map in key order. A fresh iterator is
// invalid; position it with First or Last. The usual pattern:
//
//	it := m.Iter()
//	for it.First(); it.Valid(); it.Next() {
//		_ = it.Key()
//		_ = it.Value()
//	}
//
// An iterator is invalidated by any structural mutation of the map (Insert
// of a new key, Delete, Clear, Close) and must be re-derived afterward;
// using it after a mutation is undefined. Put on an existing key does not
// change the tree shape and does not invalidate iterators.
type Iterator[K, V any] struct {
	m *Map[K, V]
	h uint32
}

// Iter returns an unpositioned iterator over m.
func (m *Map[K, V]) Iter() Iterator[K, V] {
	return Iterator[K, V]{m: m}
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator[K, V]) Valid() bool {
	return it.h != nilNode
}

// First positions the iterator at the minimum key and reports whether the
// map is non-empty.
func (it *Iterator[K, V]) First() bool {
	if it.m == nil || it.m.store == nil {
		it.h = nilNode
		return false
	}
	it.h = it.m.subtreeMin(it.m.root)
	return it.h != nilNode
}

// Last positions the iterator at the maximum key and reports whether the
// map is non-empty.
func (it *Iterator[K, V]) Last() bool {
	if it.m == nil || it.m.store == nil {
		it.h = nilNode
		return false
	}
	it.h = it.m.subtreeMax(it.m.root)
	return it.h != nilNode
}

// Next advances to the in-order successor and reports whether the iterator
// is still valid. Calling Next on an exhausted iterator is a no-op.
func (it *Iterator[K, V]) Next() bool {
	if it.h == nilNode {
		return false
	}
	st := it.m.store
	n := st.node(it.h)
	if n.right != nilNode {
		it.h = it.m.subtreeMin(n.right)
		return true
	}
	// Ascend until arriving from a left child; that ancestor is the
	// successor. Running off the root means the maximum was reached.
	h, p := it.h, n.parent
	for p != nilNode && st.node(p).right == h {
		h, p = p, st.node(p).parent
	}
	it.h = p
	return p != nilNode
}

// Prev is the mirror image of Next.
func (it *Iterator[K, V]) Prev() bool {
	if it.h == nilNode {
		return false
	}
	st := it.m.store
	n := st.node(it.h)
	if n.left != nilNode {
		it.h = it.m.subtreeMax(n.left)
		return true
	}
	h, p := it.h, n.parent
	for p != nilNode && st.node(p).left == h {
		h, p = p, st.node(p).parent
	}
	it.h = p
	return p != nilNode
}

// Key returns the key at the current position. It must not be called on an
// invalid iterator.
func (it *Iterator[K, V]) Key() K {
	return it.m.store.node(it.h).key
}

// Value returns the value at the current position. It must not be called on
// an invalid iterator.
func (it *Iterator[K, V]) Value() V {
	return it.m.store.node(it.h).value
}
