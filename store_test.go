// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package avlmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeapStoreAlloc(t *testing.T) {
	s := newHeapStore[int, string]()

	h1, err := s.alloc()
	require.NoError(t, err)
	require.Equal(t, uint32(1), h1, "slot 0 is reserved as the nil sentinel")
	n := s.node(h1)
	require.Equal(t, int32(1), n.height)
	require.Equal(t, nilNode, n.left)
	require.Equal(t, nilNode, n.right)
	require.Equal(t, nilNode, n.parent)

	h2, err := s.alloc()
	require.NoError(t, err)
	require.Equal(t, uint32(2), h2)
	require.Equal(t, 0, s.capacity())
	require.Equal(t, 0, s.freeSlots())
}

func TestHeapStoreFreeList(t *testing.T) {
	s := newHeapStore[int, string]()
	h1, _ := s.alloc()
	h2, _ := s.alloc()
	h3, _ := s.alloc()

	s.release(h2)
	s.release(h1)
	require.Equal(t, 2, s.freeSlots())

	// Released slots are reused LIFO before the slab grows.
	r1, err := s.alloc()
	require.NoError(t, err)
	require.Equal(t, h1, r1)
	r2, err := s.alloc()
	require.NoError(t, err)
	require.Equal(t, h2, r2)
	require.Equal(t, 0, s.freeSlots())

	r3, err := s.alloc()
	require.NoError(t, err)
	require.Greater(t, r3, h3)
}

func TestHeapStoreReleaseClearsSlot(t *testing.T) {
	s := newHeapStore[string, []byte]()
	h, _ := s.alloc()
	n := s.node(h)
	n.key = "k"
	n.value = []byte("v")

	s.release(h)
	n = s.node(h)
	require.Empty(t, n.key)
	require.Nil(t, n.value, "released slots must not retain references")
	require.Equal(t, int32(0), n.height)
}

func TestPoolStoreExhaustion(t *testing.T) {
	s := newPoolStore[int, int](3)
	require.Equal(t, 3, s.capacity())
	require.Equal(t, 3, s.freeSlots())

	// Slots are handed out lowest index first.
	for want := uint32(1); want <= 3; want++ {
		h, err := s.alloc()
		require.NoError(t, err)
		require.Equal(t, want, h)
	}
	_, err := s.alloc()
	require.ErrorIs(t, err, ErrPoolExhausted)

	s.release(2)
	h, err := s.alloc()
	require.NoError(t, err)
	require.Equal(t, uint32(2), h)
	require.Equal(t, 0, s.freeSlots())
}

func TestStoreSentinelStaysZero(t *testing.T) {
	s := newPoolStore[int, int](4)
	for i := 0; i < 4; i++ {
		_, err := s.alloc()
		require.NoError(t, err)
	}
	sn := s.node(nilNode)
	require.Equal(t, int32(0), sn.height)
	require.Equal(t, nilNode, sn.left)
	require.Equal(t, nilNode, sn.right)
}
