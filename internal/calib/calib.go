// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package calib loads the calibration tables (m_f, u_f per field, and the
// non-match score distribution F_u) that drive Fellegi-Sunter scoring and
// the Neyman-Pearson t_high derivation. Calibration tables are loaded once
// at pipeline start and shared read-only across every stage worker (§5);
// this mirrors the teacher's "shared resources" section, where BLAST
// search parameters are computed once in main and passed down immutably.
package calib

import (
	_ "embed"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/refdedupe/dedupe/internal/errs"
	"github.com/refdedupe/dedupe/internal/model"
)

//go:embed data/calibration.yaml
var defaultCalibration []byte

// Table holds the shipped m/u weights and the non-match score sample used
// by §4.3 and §4.4.
type Table struct {
	M  map[model.FieldName]float64 `yaml:"m"`
	U  map[model.FieldName]float64 `yaml:"u"`
	FU []float64                   `yaml:"f_u"`
}

// Default loads the calibration table shipped inside the binary.
func Default() (Table, error) {
	return parse(defaultCalibration)
}

// LoadFile loads a calibration table from an external YAML file, for
// operators who recalibrate against their own labeled data.
func LoadFile(path string, read func(string) ([]byte, error)) (Table, error) {
	b, err := read(path)
	if err != nil {
		return Table{}, errs.Calibration(err, "reading calibration file "+path)
	}
	return parse(b)
}

func parse(b []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Table{}, errs.Calibration(err, "parsing calibration data")
	}
	if err := t.validate(); err != nil {
		return Table{}, err
	}
	sort.Float64s(t.FU)
	return t, nil
}

func (t Table) validate() error {
	for _, f := range model.FieldOrder {
		if _, ok := t.M[f]; !ok {
			return errs.New(errs.KindCalibration, "missing m weight for field "+string(f))
		}
		if _, ok := t.U[f]; !ok {
			return errs.New(errs.KindCalibration, "missing u weight for field "+string(f))
		}
	}
	if len(t.FU) == 0 {
		return errs.New(errs.KindCalibration, "empty non-match score sample f_u")
	}
	return nil
}

// LogLikelihoodRatio returns log(m/u) and log((1-m)/(1-u)) for field f, the
// two terms combined in §4.3's aggregation formula depending on whether the
// field agrees.
func (t Table) LogLikelihoodRatio(f model.FieldName) (agreeWeight, disagreeWeight float64) {
	m := t.M[f]
	u := t.U[f]
	return logf(m / u), logf((1 - m) / (1 - u))
}

// Quantile computes the empirical quantile of F_u at probability p using
// linear interpolation between order statistics (gonum's stat.Quantile
// with LinInterp), per the shipped calibration file's convention referenced
// by the open question in spec.md §9.
func (t Table) Quantile(p float64) float64 {
	return stat.Quantile(p, stat.LinInterp, t.FU, nil)
}
