// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "sort"

// BlockerTag names one of the configured candidate-pair generators.
type BlockerTag string

const (
	BlockerDOI       BlockerTag = "doi"
	BlockerPMID      BlockerTag = "pmid"
	BlockerYearTitle BlockerTag = "year_title"
	BlockerLSH       BlockerTag = "lsh"
)

// AllBlockers is the default active blocker set, in the fixed order used
// wherever blocker tags must be enumerated deterministically (candidate
// generation reports, CandidatePair.Blockers serialization).
var AllBlockers = []BlockerTag{BlockerDOI, BlockerPMID, BlockerYearTitle, BlockerLSH}

// CandidatePair is a pair of records flagged as worth scoring by one or more
// blockers. AID is always lexicographically less than BID.
type CandidatePair struct {
	AID      string                `json:"a_id"`
	BID      string                `json:"b_id"`
	Blockers map[BlockerTag]bool   `json:"-"`
}

// NewPair returns a CandidatePair with a, b ordered so AID < BID.
func NewPair(a, b string, blocker BlockerTag) CandidatePair {
	if b < a {
		a, b = b, a
	}
	return CandidatePair{
		AID:      a,
		BID:      b,
		Blockers: map[BlockerTag]bool{blocker: true},
	}
}

// Key returns the (AID, BID) tuple used to identify this pair uniquely.
func (p CandidatePair) Key() [2]string { return [2]string{p.AID, p.BID} }

// BlockerTags returns the pair's blocker tags in AllBlockers order.
func (p CandidatePair) BlockerTags() []BlockerTag {
	var tags []BlockerTag
	for _, b := range AllBlockers {
		if p.Blockers[b] {
			tags = append(tags, b)
		}
	}
	return tags
}

// Less reports whether p sorts before q under the canonical (a_id, b_id)
// pair ordering required by §5's ordering guarantees.
func (p CandidatePair) Less(q CandidatePair) bool {
	if p.AID != q.AID {
		return p.AID < q.AID
	}
	return p.BID < q.BID
}

// SortPairs sorts pairs by (a_id, b_id) in place.
func SortPairs(pairs []CandidatePair) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Less(pairs[j]) })
}

func (p CandidatePair) ToMap() map[string]interface{} {
	tags := p.BlockerTags()
	ss := make([]string, len(tags))
	for i, t := range tags {
		ss[i] = string(t)
	}
	return map[string]interface{}{
		"a_id":     p.AID,
		"b_id":     p.BID,
		"blockers": ss,
	}
}

// AgreementPattern is a bitmask recording the quantized per-field agreement
// outcome (§4.3), two bits per field in model.FieldOrder order: 00 = 0,
// 01 = 0.5, 10 = 1, with the lowest two bits belonging to FieldOrder[0].
type AgreementPattern uint32

// ScoredPair extends CandidatePair with the Fellegi-Sunter score.
type ScoredPair struct {
	CandidatePair
	FieldScores      map[FieldName]float64 `json:"-"`
	TotalScore       float64               `json:"total_score"`
	AgreementPattern AgreementPattern      `json:"agreement_pattern"`
}

func (p ScoredPair) ToMap() map[string]interface{} {
	fs := make(map[string]interface{}, len(FieldOrder))
	for _, f := range FieldOrder {
		if v, ok := p.FieldScores[f]; ok {
			fs[string(f)] = v
		}
	}
	m := p.CandidatePair.ToMap()
	m["field_scores"] = fs
	m["total_score"] = p.TotalScore
	m["agreement_pattern"] = uint32(p.AgreementPattern)
	return m
}

// Decision is one of the three pairwise decision outcomes (§4.4).
type Decision string

const (
	AutoDup  Decision = "AUTO_DUP"
	Review   Decision = "REVIEW"
	AutoKeep Decision = "AUTO_KEEP"
)

// PairDecision is the Stage 4 output for a single scored pair.
type PairDecision struct {
	ScoredPair
	Decision     Decision `json:"decision"`
	ThresholdLow  float64 `json:"threshold_low"`
	ThresholdHigh float64 `json:"threshold_high"`
	Reason        string  `json:"reason"`
}

func (d PairDecision) ToMap() map[string]interface{} {
	m := d.ScoredPair.ToMap()
	m["decision"] = string(d.Decision)
	m["threshold_low"] = d.ThresholdLow
	m["threshold_high"] = d.ThresholdHigh
	m["reason"] = d.Reason
	return m
}
