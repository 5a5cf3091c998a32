// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package score

import (
	"github.com/refdedupe/dedupe/internal/calib"
	"github.com/refdedupe/dedupe/internal/model"
)

// FieldScores computes the raw (pre-quantization) comparator value for
// every field in model.FieldOrder.
func FieldScores(a, b model.CanonicalRecord, missingWeight float64) map[model.FieldName]float64 {
	out := make(map[model.FieldName]float64, len(model.FieldOrder))
	out[model.FieldDOI] = compareDOI(a.DOI, b.DOI, missingWeight)
	out[model.FieldPMID] = comparePMID(a.PMID, b.PMID, missingWeight)
	out[model.FieldTitle] = compareTitle(a.Title, b.Title)
	out[model.FieldAuthors] = compareAuthors(a.Authors, b.Authors, missingWeight)
	out[model.FieldYear] = compareYear(a.Year, b.Year, missingWeight)
	out[model.FieldVenue] = compareVenue(a.Venue, b.Venue)
	out[model.FieldVolume] = compareScalar(a.Volume, b.Volume, missingWeight)
	out[model.FieldIssue] = compareScalar(a.Issue, b.Issue, missingWeight)
	out[model.FieldPages] = comparePages(a.PagesStart, a.PagesEnd, b.PagesStart, b.PagesEnd, missingWeight)
	return out
}

// quantize rounds a comparator value to the {0, 0.5, 1} agreement levels
// used by the Fellegi-Sunter aggregation (§4.3): >=0.85 -> 1, [0.5,0.85) ->
// 0.5, <0.5 -> 0.
func quantize(v float64) float64 {
	switch {
	case v >= 0.85:
		return 1
	case v >= 0.5:
		return 0.5
	default:
		return 0
	}
}

// quantizedBits maps a quantized agreement level to its 2-bit pattern
// code: 0 -> 0b00, 0.5 -> 0b01, 1 -> 0b10.
func quantizedBits(q float64) uint32 {
	switch q {
	case 1:
		return 0b10
	case 0.5:
		return 0b01
	default:
		return 0b00
	}
}

// Score computes the Fellegi-Sunter total log-likelihood-ratio score for a
// pair (§4.3's aggregation formula) and the quantized agreement_pattern
// bitmask, enumerating fields in the fixed model.FieldOrder so the result
// is byte-identical across platforms.
func Score(a, b model.CanonicalRecord, table calib.Table, missingWeight float64) (total float64, fieldScores map[model.FieldName]float64, pattern model.AgreementPattern) {
	fieldScores = FieldScores(a, b, missingWeight)
	var pat uint32
	for i, f := range model.FieldOrder {
		raw, ok := fieldScores[f]
		if !ok {
			continue
		}
		q := quantize(raw)
		agreeW, disagreeW := table.LogLikelihoodRatio(f)
		total += q*agreeW + (1-q)*disagreeW
		pat |= quantizedBits(q) << uint(2*i)
	}
	return total, fieldScores, model.AgreementPattern(pat)
}
