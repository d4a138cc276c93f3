// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package avlmap

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// CheckInvariants verifies the structural invariants of the map: the AVL
// balance bound and stored heights, parent back-references, the binary
// search tree ordering, and the entry count. It is exercised after every
// mutation in invariant builds and is exported for tests and tools.
func (m *Map[K, V]) CheckInvariants() error {
	if m == nil || m.store == nil {
		return nil
	}
	if m.root != nilNode && m.store.node(m.root).parent != nilNode {
		return errors.Errorf("avlmap: root %d has parent link %d", m.root, m.store.node(m.root).parent)
	}
	count, _, err := m.checkSubtree(m.root, nilNode)
	if err != nil {
		return err
	}
	if count != m.count {
		return errors.Errorf("avlmap: reachable nodes %d != size %d", count, m.count)
	}
	// In-order traversal must yield strictly increasing keys.
	it := m.Iter()
	if it.First() {
		prev := it.Key()
		for it.Next() {
			if m.cmp(prev, it.Key()) >= 0 {
				return errors.Errorf("avlmap: keys out of order: %v then %v", prev, it.Key())
			}
			prev = it.Key()
		}
	}
	return nil
}

func (m *Map[K, V]) checkSubtree(h, parent uint32) (count int, height int32, _ error) {
	if h == nilNode {
		return 0, 0, nil
	}
	n := m.store.node(h)
	if n.parent != parent {
		return 0, 0, errors.Errorf(
			"avlmap: node %d (key %v): parent link %d, expected %d", h, n.key, n.parent, parent)
	}
	lc, lh, err := m.checkSubtree(n.left, h)
	if err != nil {
		return 0, 0, err
	}
	rc, rh, err := m.checkSubtree(n.right, h)
	if err != nil {
		return 0, 0, err
	}
	want := max(lh, rh) + 1
	if n.height != want {
		return 0, 0, errors.Errorf(
			"avlmap: node %d (key %v): height %d, expected %d", h, n.key, n.height, want)
	}
	if balance := lh - rh; balance < -1 || balance > 1 {
		return 0, 0, errors.Errorf(
			"avlmap: node %d (key %v): balance %d outside [-1, 1]", h, n.key, balance)
	}
	return lc + rc + 1, want, nil
}

// DebugString renders the tree shape for tests and debugging: one node per
// line in preorder, children indented under their parent and tagged with
// the link they hang off.
func (m *Map[K, V]) DebugString() string {
	if m == nil || m.store == nil || m.root == nilNode {
		return "empty\n"
	}
	var sb strings.Builder
	m.debugNode(&sb, m.root, "", "")
	return sb.String()
}

func (m *Map[K, V]) debugNode(sb *strings.Builder, h uint32, indent, tag string) {
	n := m.store.node(h)
	fmt.Fprintf(sb, "%s%s%v:%v h=%d\n", indent, tag, n.key, n.value, n.height)
	if n.left != nilNode {
		m.debugNode(sb, n.left, indent+"  ", "l: ")
	}
	if n.right != nilNode {
		m.debugNode(sb, n.right, indent+"  ", "r: ")
	}
}
