// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/avlmap"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

var benchConfig struct {
	concurrency int
	duration    time.Duration
	keys        int
	readPercent int
	capacity    int
	seed        uint64
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run a concurrent get/put/delete workload",
	Long: `
Run a mixed point workload for the configured duration. Each worker owns an
independent map, so concurrency scales the aggregate load without contending
on a shared tree. Latencies are recorded per operation type and reported as
percentiles, together with a per-second throughput plot.
`,
	RunE: runBench,
}

const (
	minLatency = 10 * time.Microsecond
	maxLatency = 10 * time.Second
)

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 1)
}

type benchOp int

const (
	benchGet benchOp = iota
	benchPut
	benchDelete
	numBenchOps
)

var benchOpNames = [numBenchOps]string{"get", "put", "delete"}

type benchWorker struct {
	m     *avlmap.Map[uint64, uint64]
	rng   *rand.Rand
	hists [numBenchOps]*hdrhistogram.Histogram
	total *atomic.Uint64
}

func newBenchWorker(seed uint64, total *atomic.Uint64) (*benchWorker, error) {
	var opts []avlmap.Option[uint64, uint64]
	if benchConfig.capacity > 0 {
		opts = append(opts, avlmap.WithCapacity[uint64, uint64](benchConfig.capacity))
	}
	m, err := avlmap.New[uint64, uint64](func(a, b uint64) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	w := &benchWorker{
		m:     m,
		rng:   rand.New(rand.NewSource(seed)),
		total: total,
	}
	for i := range w.hists {
		w.hists[i] = newHistogram()
	}

	// Start at half occupancy so deletes have something to remove.
	prefill := benchConfig.keys / 2
	if benchConfig.capacity > 0 && prefill > benchConfig.capacity {
		prefill = benchConfig.capacity
	}
	for i := 0; i < prefill; i++ {
		if err := m.Insert(uint64(i), w.rng.Uint64()); err != nil {
			_ = m.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *benchWorker) record(op benchOp, elapsed time.Duration) {
	if elapsed < minLatency {
		elapsed = minLatency
	} else if elapsed > maxLatency {
		elapsed = maxLatency
	}
	if err := w.hists[op].RecordValue(elapsed.Nanoseconds()); err != nil {
		// Values are clamped to the histogram range above, so recording
		// cannot fail.
		panic(errors.Wrapf(err, "%s: recording value", benchOpNames[op]))
	}
	w.total.Add(1)
}

func (w *benchWorker) run(stop <-chan struct{}) error {
	writeSplit := benchConfig.readPercent + (100-benchConfig.readPercent)/2
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		k := w.rng.Uint64n(uint64(benchConfig.keys))
		p := w.rng.Intn(100)
		start := crtime.NowMono()
		switch {
		case p < benchConfig.readPercent:
			_, _ = w.m.Get(k)
			w.record(benchGet, start.Elapsed())
		case p < writeSplit:
			if _, err := w.m.Put(k, w.rng.Uint64()); err != nil &&
				!errors.Is(err, avlmap.ErrPoolExhausted) {
				return err
			}
			w.record(benchPut, start.Elapsed())
		default:
			w.m.Delete(k)
			w.record(benchDelete, start.Elapsed())
		}
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchConfig.readPercent < 0 || benchConfig.readPercent > 100 {
		return errors.Newf("read-percent must be in [0, 100], got %d", benchConfig.readPercent)
	}
	if benchConfig.keys <= 0 {
		return errors.Newf("keys must be positive, got %d", benchConfig.keys)
	}
	seed := benchConfig.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	fmt.Printf("workers=%d keys=%s read=%d%% capacity=%d seed=%d\n",
		benchConfig.concurrency, crhumanize.Count(benchConfig.keys, crhumanize.Compact),
		benchConfig.readPercent, benchConfig.capacity, seed)

	var total atomic.Uint64
	workers := make([]*benchWorker, benchConfig.concurrency)
	for i := range workers {
		w, err := newBenchWorker(seed+uint64(i), &total)
		if err != nil {
			return err
		}
		defer w.m.Close()
		workers[i] = w
	}

	stop := make(chan struct{})
	var g errgroup.Group
	start := crtime.NowMono()
	for _, w := range workers {
		g.Go(func() error {
			return w.run(stop)
		})
	}

	// Sample the aggregate op counter once a second for the throughput plot.
	samples := []float64{0}
	ticker := time.NewTicker(time.Second)
	deadline := time.After(benchConfig.duration)
sampling:
	for {
		select {
		case <-ticker.C:
			samples = append(samples, float64(total.Load()))
		case <-deadline:
			break sampling
		}
	}
	ticker.Stop()
	close(stop)
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := start.Elapsed()

	merged := [numBenchOps]*hdrhistogram.Histogram{}
	for op := range merged {
		merged[op] = newHistogram()
		for _, w := range workers {
			merged[op].Merge(w.hists[op])
		}
	}

	ms := func(v int64) string {
		return fmt.Sprintf("%0.2f", time.Duration(v).Seconds()*1000)
	}
	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"op", "ops", "ops/sec", "p50(ms)", "p95(ms)", "p99(ms)", "max(ms)"})
	for op, h := range merged {
		tbl.Append([]string{
			benchOpNames[op],
			fmt.Sprintf("%d", h.TotalCount()),
			fmt.Sprintf("%0.1f", float64(h.TotalCount())/elapsed.Seconds()),
			ms(h.ValueAtPercentile(50)),
			ms(h.ValueAtPercentile(95)),
			ms(h.ValueAtPercentile(99)),
			ms(h.Max()),
		})
	}
	tbl.Render()

	totalOps := total.Load()
	fmt.Printf("%s ops in %s (%s ops/sec)\n",
		crhumanize.Count(totalOps, crhumanize.Compact), elapsed.Round(time.Millisecond),
		crhumanize.Count(uint64(float64(totalOps)/elapsed.Seconds()), crhumanize.Compact))

	if len(samples) > 1 {
		deltas := make([]float64, len(samples)-1)
		for i := range deltas {
			deltas[i] = samples[i+1] - samples[i]
		}
		fmt.Printf("\nops/sec over time:\n%s\n", asciigraph.Plot(deltas, asciigraph.Height(10)))
	}
	return nil
}
