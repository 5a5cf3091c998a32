// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/refdedupe/dedupe/pipeline"
)

// stageSpec describes one of the single-stage subcommands: the default
// starting stage (when --from-stage is not given) and the stage it stops
// after.
type stageSpec struct {
	from       string
	to         string
	needsInput bool
	allowDot   bool // reaches the cluster stage, so --dot is meaningful
}

// newStageCmd builds a subcommand that runs the pipeline from spec.from
// (or an operator-supplied --from-stage) through spec.to, printing the
// resulting summary as JSON.
func newStageCmd(rf *rootFlags, name, short string, spec stageSpec) *cobra.Command {
	fromOverride := spec.from
	var dotPrefix string
	cmd := &cobra.Command{
		Use:   name + " [files...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var inputs []pipeline.Input
			if spec.needsInput && fromOverride == "normalize" {
				var err error
				inputs, err = loadInputs(args)
				if err != nil {
					return err
				}
			}
			p, err := buildPipeline(rf, pipeline.Stage(fromOverride), pipeline.Stage(spec.to))
			if err != nil {
				return err
			}
			p.DotPrefix = dotPrefix
			result, err := p.Run(context.Background(), inputs, time.Now())
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
	cmd.Flags().StringVar(&fromOverride, "from-stage", spec.from, "resume from this stage instead of normalize (requires valid artifacts in --output)")
	if spec.allowDot {
		cmd.Flags().StringVar(&dotPrefix, "dot", "", "write <prefix>.dot, a weighted graph of AUTO_DUP/REVIEW pair decisions")
	}
	return cmd
}

func printResult(result pipeline.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
