// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package block implements Stage 2 (candidate generation, §4.2): a set of
// cheap blockers, each producing candidate pairs with high recall, whose
// results are unioned by (a_id, b_id) with blocker tags merged, then capped
// per record for pathological inputs. A blocker that cannot run on a given
// record (missing field) is skipped silently for that record; coverage is
// tracked for the audit artifact.
package block

import (
	"strconv"
	"strings"

	"github.com/refdedupe/dedupe/internal/model"
)

// stopwords is the fixed stopword list removed from title tokens before the
// year_title blocker takes its first-n-tokens key (§4.2).
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "into": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "to": true, "with": true,
}

func titleTokens(title string) []string {
	fields := strings.Fields(title)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Coverage accumulates per-blocker statistics for the audit artifact
// (SPEC_FULL.md "Blocker coverage audit").
type Coverage struct {
	PairsEmitted    int
	RecordsCovered  map[string]bool
	SkippedRecords  int
}

func newCoverage() *Coverage {
	return &Coverage{RecordsCovered: make(map[string]bool)}
}

// byDOI groups records by non-null normalized DOI, emitting all pairs
// within each group.
func byDOI(records []model.CanonicalRecord) ([]model.CandidatePair, *Coverage) {
	return byEquality(records, model.BlockerDOI, func(c model.CanonicalRecord) (string, bool) {
		if c.DOI == nil {
			return "", false
		}
		return *c.DOI, true
	})
}

// byPMID groups records by non-null PMID, emitting all pairs within each
// group.
func byPMID(records []model.CanonicalRecord) ([]model.CandidatePair, *Coverage) {
	return byEquality(records, model.BlockerPMID, func(c model.CanonicalRecord) (string, bool) {
		if c.PMID == nil {
			return "", false
		}
		return *c.PMID, true
	})
}

func byEquality(records []model.CanonicalRecord, tag model.BlockerTag, key func(model.CanonicalRecord) (string, bool)) ([]model.CandidatePair, *Coverage) {
	cov := newCoverage()
	groups := make(map[string][]string)
	for _, r := range records {
		k, ok := key(r)
		if !ok {
			cov.SkippedRecords++
			continue
		}
		groups[k] = append(groups[k], r.ID)
		cov.RecordsCovered[r.ID] = true
	}
	var pairs []model.CandidatePair
	for _, ids := range groups {
		pairs = append(pairs, allPairs(ids, tag)...)
	}
	cov.PairsEmitted = len(pairs)
	return pairs, cov
}

// byYearTitle keys on (year, first_n_title_tokens) after stopword removal;
// records with a null year or fewer than 3 title tokens are skipped (§4.2).
func byYearTitle(records []model.CanonicalRecord, n int) ([]model.CandidatePair, *Coverage) {
	cov := newCoverage()
	groups := make(map[string][]string)
	for _, r := range records {
		if r.Year == nil || r.Title == nil {
			cov.SkippedRecords++
			continue
		}
		tokens := titleTokens(*r.Title)
		if len(tokens) < 3 {
			cov.SkippedRecords++
			continue
		}
		if len(tokens) > n {
			tokens = tokens[:n]
		}
		key := yearTitleKey(*r.Year, tokens)
		groups[key] = append(groups[key], r.ID)
		cov.RecordsCovered[r.ID] = true
	}
	var pairs []model.CandidatePair
	for _, ids := range groups {
		pairs = append(pairs, allPairs(ids, model.BlockerYearTitle)...)
	}
	cov.PairsEmitted = len(pairs)
	return pairs, cov
}

func yearTitleKey(year int, tokens []string) string {
	var b strings.Builder
	b.Grow(8 + len(tokens)*8)
	writeInt(&b, year)
	for _, t := range tokens {
		b.WriteByte('\x00')
		b.WriteString(t)
	}
	return b.String()
}

func writeInt(b *strings.Builder, n int) {
	b.WriteString(strconv.Itoa(n))
}

// allPairs emits every within-group pair for ids, a_id < b_id, tagged with
// tag.
func allPairs(ids []string, tag model.BlockerTag) []model.CandidatePair {
	if len(ids) < 2 {
		return nil
	}
	pairs := make([]model.CandidatePair, 0, len(ids)*(len(ids)-1)/2)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, model.NewPair(ids[i], ids[j], tag))
		}
	}
	return pairs
}
