// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package avlmap

import "github.com/cockroachdb/avlmap/internal/invariants"

// This file contains the tree surgery: rotations, bottom-up rebalancing and
// the structural helpers shared by Insert, Delete and the iterator. All of
// it is expressed over store handles; the only pointer ever held is to the
// node currently being touched.

// height returns the stored height of h, 0 for the nil sentinel. Heights
// satisfy height(n) = 1 + max(height(left), height(right)).
func (m *Map[K, V]) height(h uint32) int32 {
	if h == nilNode {
		return 0
	}
	return m.store.node(h).height
}

func (m *Map[K, V]) updateHeight(h uint32) {
	n := m.store.node(h)
	hl, hr := m.height(n.left), m.height(n.right)
	if hl < hr {
		hl = hr
	}
	n.height = hl + 1
}

// findNode descends from the root comparing keys. It returns the handle of
// the matching node or nilNode.
func (m *Map[K, V]) findNode(key K) uint32 {
	h := m.root
	for h != nilNode {
		n := m.store.node(h)
		c := m.cmp(key, n.key)
		if c == 0 {
			return h
		}
		if c < 0 {
			h = n.left
		} else {
			h = n.right
		}
	}
	return nilNode
}

// subtreeMin returns the leftmost node of the subtree rooted at h.
func (m *Map[K, V]) subtreeMin(h uint32) uint32 {
	if h == nilNode {
		return nilNode
	}
	for {
		n := m.store.node(h)
		if n.left == nilNode {
			return h
		}
		h = n.left
	}
}

// subtreeMax returns the rightmost node of the subtree rooted at h.
func (m *Map[K, V]) subtreeMax(h uint32) uint32 {
	if h == nilNode {
		return nilNode
	}
	for {
		n := m.store.node(h)
		if n.right == nilNode {
			return h
		}
		h = n.right
	}
}

// replaceChild redirects parent's link from oldChild to newChild, or sets
// the root if parent is nil. newChild's parent back-reference is updated.
func (m *Map[K, V]) replaceChild(parent, oldChild, newChild uint32) {
	if parent == nilNode {
		m.root = newChild
		if newChild != nilNode {
			m.store.node(newChild).parent = nilNode
		}
		return
	}
	p := m.store.node(parent)
	if p.left == oldChild {
		p.left = newChild
	} else {
		p.right = newChild
	}
	if newChild != nilNode {
		m.store.node(newChild).parent = parent
	}
}

// rotateRight rotates the subtree rooted at y to the right and returns the
// new subtree root (y's left child). The caller is responsible for linking
// the returned node into y's former parent slot.
//
//	    y              x
//	   / \            / \
//	  x   C    →     A   y
//	 / \                / \
//	A   B              B   C
func (m *Map[K, V]) rotateRight(yh uint32) uint32 {
	y := m.store.node(yh)
	xh := y.left
	x := m.store.node(xh)
	t := x.right

	x.right = yh
	y.left = t
	if t != nilNode {
		m.store.node(t).parent = yh
	}
	x.parent = y.parent
	y.parent = xh

	m.updateHeight(yh)
	m.updateHeight(xh)
	return xh
}

// rotateLeft is the mirror image of rotateRight.
func (m *Map[K, V]) rotateLeft(xh uint32) uint32 {
	x := m.store.node(xh)
	yh := x.right
	y := m.store.node(yh)
	t := y.left

	y.left = xh
	x.right = t
	if t != nilNode {
		m.store.node(t).parent = xh
	}
	y.parent = x.parent
	x.parent = yh

	m.updateHeight(xh)
	m.updateHeight(yh)
	return yh
}

// rebalanceAt recomputes h's height and, if the balance factor left the
// ±1 band, applies one of the four rotation cases. It returns the node now
// occupying h's position; the caller relinks it into the parent.
//
// When the heavy child's subtree heights are equal the single rotation is
// chosen. Changing this tie-break would still yield a valid AVL tree, but a
// differently shaped one; the fixtures under testdata depend on it.
func (m *Map[K, V]) rebalanceAt(h uint32) uint32 {
	m.updateHeight(h)
	n := m.store.node(h)
	switch balance := m.height(n.left) - m.height(n.right); {
	case balance > 1:
		l := m.store.node(n.left)
		if m.height(l.left) >= m.height(l.right) {
			return m.rotateRight(h) // LL
		}
		// LR: first rotate the left child left, then this node right.
		nl := m.rotateLeft(n.left)
		n.left = nl
		m.store.node(nl).parent = h
		return m.rotateRight(h)
	case balance < -1:
		r := m.store.node(n.right)
		if m.height(r.right) >= m.height(r.left) {
			return m.rotateLeft(h) // RR
		}
		// RL
		nr := m.rotateRight(n.right)
		n.right = nr
		m.store.node(nr).parent = h
		return m.rotateLeft(h)
	}
	return h
}

// rebalancePath walks from h to the root, rebalancing at every ancestor and
// relinking each rebalanced subtree into its parent's child slot. Both
// Insert and Delete restore the AVL invariant this way.
func (m *Map[K, V]) rebalancePath(h uint32) {
	for h != nilNode {
		nh := m.rebalanceAt(h)
		parent := m.store.node(nh).parent
		m.replaceChild(parent, h, nh)
		h = parent
	}
	if m.root != nilNode {
		m.store.node(m.root).parent = nilNode
	}
}

// freeSubtree releases every node under h, applying the ownership release
// hooks. Recursion depth is bounded by the tree height, which the AVL
// invariant keeps logarithmic in the entry count.
func (m *Map[K, V]) freeSubtree(h uint32) {
	if h == nilNode {
		return
	}
	n := m.store.node(h)
	left, right := n.left, n.right
	if m.keyRelease != nil {
		m.keyRelease(n.key)
	}
	if m.valRelease != nil {
		m.valRelease(n.value)
	}
	m.store.release(h)
	m.freeSubtree(left)
	m.freeSubtree(right)
}

// maybeCheckInvariants revalidates the whole tree after mutations in
// invariant builds.
func (m *Map[K, V]) maybeCheckInvariants() {
	if invariants.Enabled {
		if err := m.CheckInvariants(); err != nil {
			panic(err)
		}
	}
}
