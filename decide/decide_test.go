// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package decide

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdedupe/dedupe/internal/calib"
	"github.com/refdedupe/dedupe/internal/model"
)

func strp(s string) *string { return &s }

func pair(a, b string, score float64) model.ScoredPair {
	return model.ScoredPair{
		CandidatePair: model.NewPair(a, b, model.BlockerDOI),
		TotalScore:    score,
	}
}

func TestDecideDOIShortCircuit(t *testing.T) {
	a := model.CanonicalRecord{ID: "a", DOI: strp("10.1/x")}
	b := model.CanonicalRecord{ID: "b", DOI: strp("10.1/x")}
	d := Decide(pair("a", "b", -100), a, b, 0.3, 0.8)
	assert.Equal(t, model.AutoDup, d.Decision)
	assert.Equal(t, reasonDOIShortCircuit, d.Reason)
}

func TestDecidePMIDShortCircuit(t *testing.T) {
	a := model.CanonicalRecord{ID: "a", PMID: strp("1234")}
	b := model.CanonicalRecord{ID: "b", PMID: strp("1234")}
	d := Decide(pair("a", "b", -100), a, b, 0.3, 0.8)
	assert.Equal(t, model.AutoDup, d.Decision)
	assert.Equal(t, reasonPMIDShortCircuit, d.Reason)
}

func TestDecideThresholds(t *testing.T) {
	a := model.CanonicalRecord{ID: "a"}
	b := model.CanonicalRecord{ID: "b"}

	tests := []struct {
		name     string
		score    float64
		decision model.Decision
	}{
		{"above high is auto dup", 0.9, model.AutoDup},
		{"at high is auto dup", 0.8, model.AutoDup},
		{"below low is auto keep", 0.1, model.AutoKeep},
		{"between is review", 0.5, model.Review},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(pair("a", "b", tt.score), a, b, 0.3, 0.8)
			assert.Equal(t, tt.decision, d.Decision)
		})
	}
}

func TestThresholdsDerivesHighFromFPRAlpha(t *testing.T) {
	table, err := calib.Default()
	require.NoError(t, err)

	low, high, err := Thresholds(0.3, nil, 0.01, table)
	require.NoError(t, err)
	assert.Equal(t, 0.3, low)
	assert.Equal(t, table.Quantile(0.99), high)
}

func TestThresholdsExplicitHighWins(t *testing.T) {
	table, err := calib.Default()
	require.NoError(t, err)

	explicit := 0.75
	_, high, err := Thresholds(0.3, &explicit, 0.01, table)
	require.NoError(t, err)
	assert.Equal(t, explicit, high)
}

func TestThresholdsRejectsLowAboveHigh(t *testing.T) {
	table, err := calib.Default()
	require.NoError(t, err)

	explicit := 0.2
	_, _, err = Thresholds(0.5, &explicit, 0.01, table)
	assert.Error(t, err)
}
