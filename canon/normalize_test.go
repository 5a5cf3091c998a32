// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdedupe/dedupe/internal/model"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		isNil    bool
	}{
		{in: "https://doi.org/10.1038/XYZ.123", expected: "10.1038/xyz.123"},
		{in: "doi:10.1038/xyz.123", expected: "10.1038/xyz.123"},
		{in: "10.1038/xyz.123", expected: "10.1038/xyz.123"},
		{in: "not a doi", isNil: true},
	}
	for _, tt := range tests {
		got := NormalizeDOI(tt.in)
		if tt.isNil {
			assert.Nil(t, got, tt.in)
			continue
		}
		if assert.NotNil(t, got, tt.in) {
			assert.Equal(t, tt.expected, *got)
		}
	}
}

func TestNormalizePMID(t *testing.T) {
	got := NormalizePMID("PMID: 12345 ")
	if assert.NotNil(t, got) {
		assert.Equal(t, "12345", *got)
	}
	assert.Nil(t, NormalizePMID("no digits here"))
}

func TestNormalizeRecordFromRIS(t *testing.T) {
	raw := model.RawRecord{
		ID: "rec1",
		Fields: []model.RawField{
			{Tag: "TY", Value: "JOUR"},
			{Tag: "TI", Value: "  The DNA of Go  "},
			{Tag: "AU", Value: "Smith, John"},
			{Tag: "AU", Value: "Doe, Jane A."},
			{Tag: "PY", Value: "2020"},
			{Tag: "DO", Value: "10.1038/xyz.123"},
		},
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rec, err := Normalize(raw, FormatRIS, now)
	require.NoError(t, err)

	require.NotNil(t, rec.Title)
	assert.Equal(t, "the dna of go", *rec.Title)
	require.NotNil(t, rec.Year)
	assert.Equal(t, 2020, *rec.Year)
	require.NotNil(t, rec.DOI)
	assert.Equal(t, "10.1038/xyz.123", *rec.DOI)
	assert.Len(t, rec.Authors, 2)
}

func TestNormalizeRejectsRecordWithNoIdentity(t *testing.T) {
	raw := model.RawRecord{}
	_, err := Normalize(raw, FormatRIS, time.Now())
	assert.Error(t, err)
}
