// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decide implements Stage 4 (§4.4): the three-way AUTO_DUP / REVIEW
// / AUTO_KEEP decision for every scored pair, plus the DOI/PMID exact-match
// short circuit and the Neyman-Pearson derivation of t_high from fpr_alpha
// when no explicit t_high is configured.
package decide

import (
	"github.com/refdedupe/dedupe/internal/calib"
	"github.com/refdedupe/dedupe/internal/errs"
	"github.com/refdedupe/dedupe/internal/model"
)

const (
	reasonDOIShortCircuit  = "doi_exact_short_circuit"
	reasonPMIDShortCircuit = "pmid_exact_short_circuit"
	reasonAboveHigh        = "score_at_or_above_t_high"
	reasonBelowLow         = "score_below_t_low"
	reasonBetween          = "score_between_t_low_and_t_high"
)

// Thresholds resolves the operating t_low/t_high pair (§4.4): t_high is
// taken verbatim when configured, otherwise derived as the
// (1-fpr_alpha)-quantile of the calibration table's non-match score sample
// F_u, so that at most fpr_alpha of true non-matches are expected to clear
// t_high.
func Thresholds(tLow float64, tHigh *float64, fprAlpha float64, table calib.Table) (low, high float64, err error) {
	if tHigh != nil {
		high = *tHigh
	} else {
		high = table.Quantile(1 - fprAlpha)
	}
	if tLow > high {
		return 0, 0, errs.Configuration("t_low (%v) must be <= t_high (%v)", tLow, high)
	}
	return tLow, high, nil
}

// Decide resolves a single scored pair into a PairDecision, given the two
// canonical records it references (needed for the DOI/PMID short circuit,
// which bypasses the score thresholds entirely).
func Decide(sp model.ScoredPair, a, b model.CanonicalRecord, tLow, tHigh float64) model.PairDecision {
	if d, reason, ok := shortCircuit(a, b); ok {
		return model.PairDecision{
			ScoredPair:    sp,
			Decision:      d,
			ThresholdLow:  tLow,
			ThresholdHigh: tHigh,
			Reason:        reason,
		}
	}
	d, reason := threshold(sp.TotalScore, tLow, tHigh)
	return model.PairDecision{
		ScoredPair:    sp,
		Decision:      d,
		ThresholdLow:  tLow,
		ThresholdHigh: tHigh,
		Reason:        reason,
	}
}

// shortCircuit reports AUTO_DUP immediately when both records carry the
// same non-null DOI or PMID (§4.4), ahead of the score-based decision.
func shortCircuit(a, b model.CanonicalRecord) (model.Decision, string, bool) {
	if a.DOI != nil && b.DOI != nil && *a.DOI == *b.DOI {
		return model.AutoDup, reasonDOIShortCircuit, true
	}
	if a.PMID != nil && b.PMID != nil && *a.PMID == *b.PMID {
		return model.AutoDup, reasonPMIDShortCircuit, true
	}
	return "", "", false
}

func threshold(score, tLow, tHigh float64) (model.Decision, string) {
	switch {
	case score >= tHigh:
		return model.AutoDup, reasonAboveHigh
	case score < tLow:
		return model.AutoKeep, reasonBelowLow
	default:
		return model.Review, reasonBetween
	}
}

// DecideAll resolves every scored pair, looking up its endpoint records by
// id in records.
func DecideAll(scored []model.ScoredPair, records map[string]model.CanonicalRecord, tLow, tHigh float64) ([]model.PairDecision, error) {
	out := make([]model.PairDecision, 0, len(scored))
	for _, sp := range scored {
		a, ok := records[sp.AID]
		if !ok {
			return nil, errs.Input("decide: unknown record id %s", sp.AID)
		}
		b, ok := records[sp.BID]
		if !ok {
			return nil, errs.Input("decide: unknown record id %s", sp.BID)
		}
		out = append(out, Decide(sp, a, b, tLow, tHigh))
	}
	return out, nil
}
