// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// dedupe runs the bibliographic reference deduplication pipeline: it reads
// one or more citation export files, canonicalizes them, blocks and scores
// candidate pairs, decides a match verdict for each, clusters the AUTO_DUP
// edges, and emits a merged record per cluster. Each stage can be run in
// isolation or chained with run, and a later invocation can resume from
// any stage whose artifacts are still valid for the current configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/refdedupe/dedupe/internal/errs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dedupe:", err)
		if errs.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// rootFlags holds the flags shared by every subcommand, mirroring the
// teacher's top-level blastnModes/realign parameter blocks that every
// search stage in ins reads from.
type rootFlags struct {
	configPath      string
	calibrationPath string
	outputDir       string
	fromStage       string
	toStage         string
	verbose         bool
}

func newRootCmd() *cobra.Command {
	var rf rootFlags
	root := &cobra.Command{
		Use:   "dedupe",
		Short: "Deduplicate bibliographic reference collections",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&rf.configPath, "config", "", "path to a pipeline configuration YAML file")
	root.PersistentFlags().StringVar(&rf.calibrationPath, "calibration", "", "path to a calibration YAML file (defaults to the shipped table)")
	root.PersistentFlags().StringVar(&rf.outputDir, "output", "", "output directory (overrides the configuration file)")
	root.PersistentFlags().BoolVar(&rf.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newRunCmd(&rf))
	root.AddCommand(newStageCmd(&rf, "normalize", "Canonicalize raw records", stageSpec{from: "normalize", to: "normalize", needsInput: true}))
	root.AddCommand(newStageCmd(&rf, "block", "Generate candidate pairs", stageSpec{from: "normalize", to: "block", needsInput: true}))
	root.AddCommand(newStageCmd(&rf, "score", "Score candidate pairs", stageSpec{from: "normalize", to: "score", needsInput: true}))
	root.AddCommand(newStageCmd(&rf, "decide", "Decide a verdict for each scored pair", stageSpec{from: "normalize", to: "decide", needsInput: true}))
	root.AddCommand(newStageCmd(&rf, "cluster", "Cluster AUTO_DUP decisions", stageSpec{from: "normalize", to: "cluster", needsInput: true, allowDot: true}))
	root.AddCommand(newStageCmd(&rf, "merge", "Merge clusters into survivor records", stageSpec{from: "normalize", to: "merge", needsInput: true, allowDot: true}))
	root.AddCommand(newValidateConfigCmd(&rf))
	return root
}
