// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads and validates the pipeline's tunable parameters
// (§6). The teacher threads its tuning (mode, threads, cull) through flag
// variables read once in main; this repo's surface is large enough to
// warrant a YAML file (loaded with gopkg.in/yaml.v3) with cobra flags able
// to override individual fields, following the same "flags win over
// defaults" precedence the teacher uses for -cores overriding a search
// mode's thread count.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/refdedupe/dedupe/internal/errs"
	"github.com/refdedupe/dedupe/internal/model"
)

// LSHParams configures the lsh blocker's banded MinHash (§4.2).
type LSHParams struct {
	K    int    `yaml:"k"`
	H    int    `yaml:"H"`
	B    int    `yaml:"b"`
	R    int    `yaml:"r"`
	Seed uint64 `yaml:"seed"`
}

// DefaultLSHParams are the §4.2 defaults: k=5, H=128, b=16, r=8, seed=0x5EED.
func DefaultLSHParams() LSHParams {
	return LSHParams{K: 5, H: 128, B: 16, R: 8, Seed: 0x5EED}
}

// Config is the full set of recognized pipeline options from §6.
type Config struct {
	FPRAlpha          float64       `yaml:"fpr_alpha"`
	TLow              float64       `yaml:"t_low"`
	THigh             *float64      `yaml:"t_high"`
	CandidateBlockers []string      `yaml:"candidate_blockers"`
	LSHParams         LSHParams     `yaml:"lsh_params"`
	MaxPairsPerRecord int           `yaml:"max_pairs_per_record"`
	MissingWeight     float64       `yaml:"missing_weight"`
	OutputDir         string        `yaml:"output_dir"`
}

// Default returns the configuration with every default from §6.
func Default() Config {
	blockers := make([]string, len(model.AllBlockers))
	for i, b := range model.AllBlockers {
		blockers[i] = string(b)
	}
	return Config{
		FPRAlpha:          0.01,
		TLow:              0.3,
		THigh:             nil,
		CandidateBlockers: blockers,
		LSHParams:         DefaultLSHParams(),
		MaxPairsPerRecord: 200,
		MissingWeight:     0.5,
		OutputDir:         "output",
	}
}

// Load reads and validates a YAML configuration file at path, merging it
// over Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errs.IO(err, "reading configuration file "+path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errs.Configuration("parsing configuration file %s: %v", path, err)
	}
	return cfg, cfg.Validate()
}

var validBlockers = map[string]model.BlockerTag{
	"doi":        model.BlockerDOI,
	"pmid":       model.BlockerPMID,
	"year_title": model.BlockerYearTitle,
	"lsh":        model.BlockerLSH,
}

// Blockers returns the configured blocker tags, validated against the
// closed set of known blocker names.
func (c Config) Blockers() ([]model.BlockerTag, error) {
	tags := make([]model.BlockerTag, 0, len(c.CandidateBlockers))
	for _, name := range c.CandidateBlockers {
		tag, ok := validBlockers[name]
		if !ok {
			return nil, errs.Configuration("unknown blocker name %q", name)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Validate checks the invariants named in §4.4, §4.2, and §6: t_low <=
// t_high (when t_high is explicit), b*r == H, known blocker names, and
// sane numeric ranges. It never fails on missing t_high, since that is
// derived later in decide from fpr_alpha.
func (c Config) Validate() error {
	if c.FPRAlpha <= 0 || c.FPRAlpha > 0.5 {
		return errs.Configuration("fpr_alpha must be in (0, 0.5], got %v", c.FPRAlpha)
	}
	if c.TLow < 0 {
		return errs.Configuration("t_low must be >= 0, got %v", c.TLow)
	}
	if c.THigh != nil && *c.THigh < c.TLow {
		return errs.Configuration("t_low (%v) must be <= t_high (%v)", c.TLow, *c.THigh)
	}
	if _, err := c.Blockers(); err != nil {
		return err
	}
	p := c.LSHParams
	if p.B*p.R != p.H {
		return errs.Configuration("lsh_params: b*r must equal H, got b=%d r=%d H=%d", p.B, p.R, p.H)
	}
	if p.K <= 0 {
		return errs.Configuration("lsh_params.k must be > 0, got %d", p.K)
	}
	if c.MaxPairsPerRecord <= 0 {
		return errs.Configuration("max_pairs_per_record must be > 0, got %d", c.MaxPairsPerRecord)
	}
	if c.MissingWeight < 0 || c.MissingWeight > 1 {
		return errs.Configuration("missing_weight must be in [0,1], got %v", c.MissingWeight)
	}
	return nil
}

// Hash returns a stable textual fingerprint of the configuration, used by
// --from-stage resume to detect a configuration that has drifted since a
// prior run (§ SPEC_FULL.md "Idempotent resumability").
func (c Config) Hash() string {
	b, _ := yaml.Marshal(c)
	return sha1Hex(b)
}
