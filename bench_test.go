// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package avlmap_test

import (
	"cmp"
	"math/rand/v2"
	"testing"

	"github.com/cockroachdb/avlmap"
)

func benchKeys(n int) []int {
	rng := rand.New(rand.NewPCG(0, 0))
	keys := make([]int, n)
	for i := range keys {
		keys[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	return keys
}

func BenchmarkInsert(b *testing.B) {
	keys := benchKeys(b.N)
	m, _ := avlmap.New[int, int](cmp.Compare[int])
	defer m.Close()
	b.ResetTimer()
	for _, k := range keys {
		_ = m.Insert(k, k)
	}
}

func BenchmarkGet(b *testing.B) {
	const size = 1 << 16
	keys := benchKeys(size)
	m, _ := avlmap.New[int, int](cmp.Compare[int])
	defer m.Close()
	for _, k := range keys {
		_ = m.Insert(k, k)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Get(keys[i&(size-1)])
	}
}

func BenchmarkDelete(b *testing.B) {
	keys := benchKeys(b.N)
	m, _ := avlmap.New[int, int](cmp.Compare[int])
	defer m.Close()
	for _, k := range keys {
		_ = m.Insert(k, k)
	}
	b.ResetTimer()
	for _, k := range keys {
		m.Delete(k)
	}
}

func BenchmarkIterate(b *testing.B) {
	const size = 1 << 16
	m, _ := avlmap.New[int, int](cmp.Compare[int])
	defer m.Close()
	for _, k := range benchKeys(size) {
		_ = m.Insert(k, k)
	}
	b.ResetTimer()
	it := m.Iter()
	for i := 0; i < b.N; {
		for it.First(); it.Valid() && i < b.N; it.Next() {
			i++
		}
	}
}
