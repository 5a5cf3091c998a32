// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"
)

// newRunCmd builds the "run" subcommand: the full six-stage pipeline,
// normalize through merge, with --from-stage available for resuming a
// prior run whose configuration has not changed.
func newRunCmd(rf *rootFlags) *cobra.Command {
	return newStageCmd(rf, "run", "Run the full pipeline end to end", stageSpec{from: "normalize", to: "merge", needsInput: true, allowDot: true})
}
