// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdedupe/dedupe/internal/model"
)

func TestDefaultLoadsShippedTable(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	for _, f := range model.FieldOrder {
		_, ok := table.M[f]
		assert.True(t, ok, "missing m weight for %s", f)
		_, ok = table.U[f]
		assert.True(t, ok, "missing u weight for %s", f)
	}
	assert.NotEmpty(t, table.FU)
}

func TestLoadFileRejectsMissingField(t *testing.T) {
	bad := []byte(`
m:
  doi: 0.9
u:
  doi: 0.1
f_u: [1.0]
`)
	_, err := LoadFile("bad.yaml", func(string) ([]byte, error) { return bad, nil })
	assert.Error(t, err, "a table missing a field's weights should fail validation")
}

func TestLoadFileRejectsEmptyFU(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	_ = table

	bad := []byte(minimalTableYAML() + "\nf_u: []\n")
	_, err = LoadFile("bad.yaml", func(string) ([]byte, error) { return bad, nil })
	assert.Error(t, err)
}

func TestQuantileInterpolatesWithinRange(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	q := table.Quantile(0.5)
	assert.GreaterOrEqual(t, q, table.FU[0])
	assert.LessOrEqual(t, q, table.FU[len(table.FU)-1])
}

func TestLogLikelihoodRatioFavorsAgreement(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	agree, disagree := table.LogLikelihoodRatio(model.FieldDOI)
	assert.Greater(t, agree, 0.0, "a reliable field's agreement weight should be positive")
	assert.Less(t, disagree, 0.0, "a reliable field's disagreement weight should be negative")
}

func minimalTableYAML() string {
	y := "m:\n"
	for _, f := range model.FieldOrder {
		y += "  " + string(f) + ": 0.9\n"
	}
	y += "u:\n"
	for _, f := range model.FieldOrder {
		y += "  " + string(f) + ": 0.1\n"
	}
	return y
}
