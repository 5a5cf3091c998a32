// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newValidateConfigCmd builds a subcommand that loads and validates a
// configuration file (and, if given, a calibration file) without touching
// any input records, so an operator can check a configuration change
// before committing to a run.
func newValidateConfigCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Validate a configuration (and calibration) file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rf)
			if err != nil {
				return err
			}
			if _, err := loadCalibration(rf); err != nil {
				return err
			}
			fmt.Printf("configuration OK: output_dir=%s t_low=%v fpr_alpha=%v blockers=%v\n",
				cfg.OutputDir, cfg.TLow, cfg.FPRAlpha, cfg.CandidateBlockers)
			return nil
		},
	}
}
