// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdedupe/dedupe/internal/config"
	"github.com/refdedupe/dedupe/internal/model"
)

func strp(s string) *string { return &s }

func record(id, doi, pmid, title, venue string, year int) model.CanonicalRecord {
	r := model.CanonicalRecord{ID: id}
	if doi != "" {
		r.DOI = strp(doi)
	}
	if pmid != "" {
		r.PMID = strp(pmid)
	}
	if title != "" {
		r.Title = strp(title)
	}
	if venue != "" {
		r.Venue = strp(venue)
	}
	if year != 0 {
		y := year
		r.Year = &y
	}
	return r
}

func TestGenerateUnionsAcrossBlockers(t *testing.T) {
	records := []model.CanonicalRecord{
		record("a", "10.1/x", "", "same paper title here", "", 2020),
		record("b", "10.1/x", "", "a completely different title", "", 2020),
	}
	result := Generate(records, model.AllBlockers, config.DefaultLSHParams(), 200)

	if assert.Len(t, result.Pairs, 1) {
		p := result.Pairs[0]
		assert.Equal(t, "a", p.AID)
		assert.Equal(t, "b", p.BID)
		assert.True(t, p.Blockers[model.BlockerDOI], "doi blocker should have flagged this pair")
	}
}

func TestGenerateCapsPerRecord(t *testing.T) {
	var records []model.CanonicalRecord
	records = append(records, record("hub", "10.1/shared", "", "", "", 0))
	for i := 0; i < 5; i++ {
		records = append(records, record(string(rune('a'+i)), "10.1/shared", "", "", "", 0))
	}
	result := Generate(records, []model.BlockerTag{model.BlockerDOI}, config.DefaultLSHParams(), 2)

	incident := 0
	for _, p := range result.Pairs {
		if p.AID == "hub" || p.BID == "hub" {
			incident++
		}
	}
	assert.LessOrEqual(t, incident, 2, "hub should have at most max_pairs_per_record incident pairs")
}

func TestLSHBandCollisionGeneratesCandidate(t *testing.T) {
	// Identical title+venue text yields an identical MinHash signature, so
	// every band key collides and a candidate pair is guaranteed regardless
	// of the hash function's behavior on any particular input.
	records := []model.CanonicalRecord{
		record("a", "", "", "a scientific title shared verbatim by both records", "nature", 0),
		record("b", "", "", "a scientific title shared verbatim by both records", "nature", 0),
		record("c", "", "", "an entirely unrelated piece about astrophysics", "", 0),
	}
	pairs, cov := byLSH(records, config.DefaultLSHParams())

	require.Len(t, pairs, 1)
	assert.Equal(t, [2]string{"a", "b"}, pairs[0].Key())
	assert.True(t, pairs[0].Blockers[model.BlockerLSH])
	assert.Equal(t, 3, len(cov.RecordsCovered))
}

func TestLSHSkipsRecordsWithNoText(t *testing.T) {
	records := []model.CanonicalRecord{
		record("a", "", "", "", "", 0),
		record("b", "", "", "some title", "", 0),
	}
	pairs, cov := byLSH(records, config.DefaultLSHParams())

	assert.Empty(t, pairs)
	assert.Equal(t, 1, cov.SkippedRecords)
}

func TestBandKeysAreDeterministic(t *testing.T) {
	params := config.DefaultLSHParams()
	sig := minHashSignature(shingles("a reasonably long shingle source string", params.K), params)

	keys1 := bandKeys(sig, params)
	keys2 := bandKeys(sig, params)
	assert.Equal(t, keys1, keys2)
	assert.Len(t, keys1, params.B)
}
