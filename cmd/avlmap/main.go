// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "avlmap [command] (flags)",
	Short: "avlmap benchmarking tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVarP(
		&benchConfig.concurrency, "concurrency", "c", 1,
		"number of concurrent workers, each operating on its own map")
	benchCmd.Flags().DurationVarP(
		&benchConfig.duration, "duration", "d", 10*time.Second, "the duration to run")
	benchCmd.Flags().IntVar(
		&benchConfig.keys, "keys", 1<<20, "size of the key space")
	benchCmd.Flags().IntVar(
		&benchConfig.readPercent, "read-percent", 75,
		"percentage of operations that are point reads")
	benchCmd.Flags().IntVar(
		&benchConfig.capacity, "capacity", 0,
		"fixed node pool capacity per map (0 for unbounded)")
	benchCmd.Flags().Uint64Var(
		&benchConfig.seed, "seed", 0, "random seed (0 to derive one from the current time)")

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
