// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdedupe/dedupe/canon"
	"github.com/refdedupe/dedupe/internal/calib"
	"github.com/refdedupe/dedupe/internal/config"
	"github.com/refdedupe/dedupe/internal/model"
)

// risRecord builds a minimal RIS-tagged RawRecord, using the same tag
// names canon.Normalize expects for FormatRIS (TI, DO, JO, PY, AU).
func risRecord(id, doi, title, venue, year, author string) model.RawRecord {
	return model.RawRecord{
		ID: id,
		Fields: []model.RawField{
			{Tag: "TY", Value: "JOUR"},
			{Tag: "TI", Value: title},
			{Tag: "DO", Value: doi},
			{Tag: "JO", Value: venue},
			{Tag: "PY", Value: year},
			{Tag: "AU", Value: author},
		},
	}
}

// TestPipelineRunEndToEndMergesExactDuplicate drives a full normalize through
// merge run over two RIS records sharing a DOI (an exact duplicate pair,
// triggering decide's DOI short circuit regardless of calibration-derived
// thresholds) plus one unrelated record. cluster.Generate only fuses
// AUTO_DUP connectivity (§4.5), so the unrelated record never joins a
// cluster and never produces a merged record.
func TestPipelineRunEndToEndMergesExactDuplicate(t *testing.T) {
	table, err := calib.Default()
	require.NoError(t, err)

	cfg := config.Default()
	cfg.OutputDir = t.TempDir()

	p := Pipeline{Config: cfg, Calib: table}

	inputs := []Input{
		{Record: risRecord("rec1", "10.1038/xyz.123", "A Shared Title About Frogs", "Nature", "2020", "Smith, John"), Format: canon.FormatRIS},
		{Record: risRecord("rec2", "10.1038/xyz.123", "A Shared Title About Frogs", "Nature", "2020", "Smith, John"), Format: canon.FormatRIS},
		{Record: risRecord("rec3", "10.1038/other.456", "An Entirely Different Subject", "Science", "2018", "Doe, Jane"), Format: canon.FormatRIS},
	}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	result, err := p.Run(context.Background(), inputs, now)
	require.NoError(t, err)

	assert.Equal(t, 3, result.InputRecords)
	assert.Equal(t, 3, result.NormalizedRecords)
	assert.Equal(t, 0, result.RejectedRecords)
	assert.GreaterOrEqual(t, result.CandidatePairs, 1)
	assert.Equal(t, 1, result.AutoDup, "the shared-DOI pair is an AUTO_DUP via decide's short circuit")
	assert.Equal(t, 1, result.Clusters, "only the AUTO_DUP pair forms a cluster; the unrelated record has no AUTO_DUP edge")
	assert.Equal(t, 1, result.MergedRecords)
}
