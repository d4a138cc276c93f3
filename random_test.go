// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package avlmap_test

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/cockroachdb/avlmap"
	"github.com/cockroachdb/swiss"
	"github.com/stretchr/testify/require"
)

// TestRandomOpsAgainstOracle runs a random schedule of inserts, puts,
// deletes and lookups, cross-checking every result against a hash map and
// revalidating the tree invariants periodically.
func TestRandomOpsAgainstOracle(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewPCG(seed, 0))

	m, err := avlmap.New[int, int](cmp.Compare[int])
	require.NoError(t, err)
	defer m.Close()

	var oracle swiss.Map[int, int]
	oracle.Init(16)

	const ops = 20000
	for i := 0; i < ops; i++ {
		k := rng.IntN(512)
		v := rng.IntN(1 << 20)
		_, present := oracle.Get(k)
		switch rng.IntN(10) {
		case 0, 1, 2:
			err := m.Insert(k, v)
			if present {
				require.ErrorIs(t, err, avlmap.ErrExists)
			} else {
				require.NoError(t, err)
				oracle.Put(k, v)
			}
		case 3, 4, 5:
			replaced, err := m.Put(k, v)
			require.NoError(t, err)
			require.Equal(t, present, replaced)
			oracle.Put(k, v)
		case 6, 7:
			require.Equal(t, present, m.Delete(k))
			if present {
				oracle.Delete(k)
			}
		default:
			got, ok := m.Get(k)
			want, wantOK := oracle.Get(k)
			require.Equal(t, wantOK, ok)
			if ok {
				require.Equal(t, want, got)
			}
		}
		require.Equal(t, oracle.Len(), m.Len())
		if i%1024 == 0 {
			require.NoError(t, m.CheckInvariants())
		}
	}
	require.NoError(t, m.CheckInvariants())

	want := make([]int, 0, oracle.Len())
	oracle.All(func(k, _ int) bool {
		want = append(want, k)
		return true
	})
	slices.Sort(want)

	var keys []int
	it := m.Iter()
	for it.First(); it.Valid(); it.Next() {
		keys = append(keys, it.Key())
		wantV, ok := oracle.Get(it.Key())
		require.True(t, ok)
		require.Equal(t, wantV, it.Value())
	}
	require.Equal(t, want, keys)
}

// TestRandomOpsFixedCapacity runs the same schedule against a pool-backed
// map, additionally exercising the exhaustion path.
func TestRandomOpsFixedCapacity(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewPCG(seed, 1))

	const capacity = 32
	m, err := avlmap.New[int, int](cmp.Compare[int], avlmap.WithCapacity[int, int](capacity))
	require.NoError(t, err)
	defer m.Close()

	var oracle swiss.Map[int, int]
	oracle.Init(capacity)

	for i := 0; i < 10000; i++ {
		k := rng.IntN(96)
		v := rng.IntN(1 << 20)
		_, present := oracle.Get(k)
		switch rng.IntN(4) {
		case 0, 1:
			err := m.Insert(k, v)
			switch {
			case present:
				require.ErrorIs(t, err, avlmap.ErrExists)
			case oracle.Len() == capacity:
				require.ErrorIs(t, err, avlmap.ErrPoolExhausted)
			default:
				require.NoError(t, err)
				oracle.Put(k, v)
			}
		case 2:
			require.Equal(t, present, m.Delete(k))
			if present {
				oracle.Delete(k)
			}
		default:
			got, ok := m.Get(k)
			want, wantOK := oracle.Get(k)
			require.Equal(t, wantOK, ok)
			if ok {
				require.Equal(t, want, got)
			}
		}
		require.Equal(t, oracle.Len(), m.Len())
		if i%512 == 0 {
			require.NoError(t, m.CheckInvariants())
		}
	}
	require.NoError(t, m.CheckInvariants())
}
