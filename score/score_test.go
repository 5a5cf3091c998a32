// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdedupe/dedupe/internal/calib"
	"github.com/refdedupe/dedupe/internal/model"
)

func record(doi, title string, year int) model.CanonicalRecord {
	y := year
	return model.CanonicalRecord{
		ID:    doi + title,
		DOI:   strp(doi),
		Title: strp(title),
		Year:  &y,
	}
}

func TestScoreIdenticalRecordsMaximal(t *testing.T) {
	table, err := calib.Default()
	require.NoError(t, err)

	a := record("10.1/x", "same title here", 2020)
	b := record("10.1/x", "same title here", 2020)

	total1, _, pattern1 := Score(a, b, table, 0.5)
	total2, _, pattern2 := Score(b, a, table, 0.5)

	assert.Equal(t, total1, total2, "score must be symmetric")
	assert.Equal(t, pattern1, pattern2)
	assert.Greater(t, total1, 0.0, "an all-agree pair should score positively")
}

func TestScoreIsDeterministic(t *testing.T) {
	table, err := calib.Default()
	require.NoError(t, err)

	a := record("10.1/x", "some title", 2020)
	b := record("10.1/y", "some other title", 2021)

	total1, fs1, pattern1 := Score(a, b, table, 0.5)
	total2, fs2, pattern2 := Score(a, b, table, 0.5)

	assert.Equal(t, total1, total2)
	assert.Equal(t, pattern1, pattern2)
	assert.Equal(t, fs1, fs2)
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, 1.0, quantize(0.85))
	assert.Equal(t, 1.0, quantize(1.0))
	assert.Equal(t, 0.5, quantize(0.5))
	assert.Equal(t, 0.5, quantize(0.84))
	assert.Equal(t, 0.0, quantize(0.49))
}
