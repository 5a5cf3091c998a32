// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/refdedupe/dedupe/canon"
	"github.com/refdedupe/dedupe/internal/calib"
	"github.com/refdedupe/dedupe/internal/config"
	"github.com/refdedupe/dedupe/internal/errs"
	"github.com/refdedupe/dedupe/ingest"
	"github.com/refdedupe/dedupe/pipeline"
)

// extFormats maps a citation file's extension to the format ingest.Parse
// should use to tokenize it.
var extFormats = map[string]canon.Format{
	".ris":    canon.FormatRIS,
	".nbib":   canon.FormatNBIB,
	".txt":    canon.FormatNBIB,
	".ciw":    canon.FormatCIW,
	".enw":    canon.FormatENW,
	".bib":    canon.FormatBibTeX,
	".bibtex": canon.FormatBibTeX,
}

// loadInputs reads every path, tokenizing it per its extension, and
// returns the combined RawRecord stream the normalize stage consumes.
func loadInputs(paths []string) ([]pipeline.Input, error) {
	var inputs []pipeline.Input
	for _, path := range paths {
		format, ok := extFormats[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil, errs.Input("unrecognized citation file extension: %s", path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, errs.IO(err, "opening input file "+path)
		}
		recs, err := ingest.Parse(f, path, format)
		f.Close()
		if err != nil {
			return nil, errs.IO(err, "parsing input file "+path)
		}
		for _, r := range recs {
			inputs = append(inputs, pipeline.Input{Record: r, Format: format})
		}
	}
	return inputs, nil
}

// newLogger builds the zerolog console logger every subcommand shares,
// mirroring the teacher's single shared *log.Logger passed down from main.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// loadConfig loads the pipeline configuration, applying the --output
// override when set.
func loadConfig(rf *rootFlags) (config.Config, error) {
	cfg, err := config.Load(rf.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if rf.outputDir != "" {
		cfg.OutputDir = rf.outputDir
	}
	return cfg, nil
}

// loadCalibration loads the shipped calibration table, or an operator-
// supplied override when --calibration is set.
func loadCalibration(rf *rootFlags) (calib.Table, error) {
	if rf.calibrationPath == "" {
		return calib.Default()
	}
	return calib.LoadFile(rf.calibrationPath, os.ReadFile)
}

// buildPipeline assembles a pipeline.Pipeline from the shared root flags
// plus the from/to stage bounds a specific subcommand runs between.
func buildPipeline(rf *rootFlags, from, to pipeline.Stage) (pipeline.Pipeline, error) {
	cfg, err := loadConfig(rf)
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	table, err := loadCalibration(rf)
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	return pipeline.Pipeline{
		Config:    cfg,
		Calib:     table,
		Log:       newLogger(rf.verbose),
		FromStage: from,
		ToStage:   to,
	}, nil
}
