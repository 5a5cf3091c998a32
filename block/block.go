// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package block

import (
	"sort"

	"github.com/refdedupe/dedupe/internal/config"
	"github.com/refdedupe/dedupe/internal/model"
)

// titleTokenCount is the §4.2 year_title blocker's first-n-tokens window.
const titleTokenCount = 5

// Result is Stage 2's output: the unioned, capped candidate pairs plus
// per-blocker coverage for the audit artifact.
type Result struct {
	Pairs    []model.CandidatePair
	Coverage map[model.BlockerTag]*Coverage
}

// Generate runs every blocker named in active, unions their pairs by
// (a_id, b_id) with blocker tags merged, and applies the
// max_pairs_per_record cap. §5 requires parallel blocker evaluation (if
// any) to still merge results by sort-then-concatenate rather than arrival
// order; each blocker here already returns its pairs independent of
// iteration order over a Go map, so the final sort is what makes the
// result reproducible.
func Generate(records []model.CanonicalRecord, active []model.BlockerTag, lsh config.LSHParams, maxPairsPerRecord int) Result {
	coverage := make(map[model.BlockerTag]*Coverage, len(active))
	merged := make(map[[2]string]model.CandidatePair)

	runOne := func(tag model.BlockerTag) {
		var pairs []model.CandidatePair
		var cov *Coverage
		switch tag {
		case model.BlockerDOI:
			pairs, cov = byDOI(records)
		case model.BlockerPMID:
			pairs, cov = byPMID(records)
		case model.BlockerYearTitle:
			pairs, cov = byYearTitle(records, titleTokenCount)
		case model.BlockerLSH:
			pairs, cov = byLSH(records, lsh)
		default:
			return
		}
		coverage[tag] = cov
		for _, p := range pairs {
			union(merged, p)
		}
	}
	for _, tag := range active {
		runOne(tag)
	}

	pairs := make([]model.CandidatePair, 0, len(merged))
	for _, p := range merged {
		pairs = append(pairs, p)
	}
	model.SortPairs(pairs)

	pairs = capPerRecord(pairs, maxPairsPerRecord)

	return Result{Pairs: pairs, Coverage: coverage}
}

func union(merged map[[2]string]model.CandidatePair, p model.CandidatePair) {
	k := p.Key()
	existing, ok := merged[k]
	if !ok {
		merged[k] = p
		return
	}
	for tag := range p.Blockers {
		existing.Blockers[tag] = true
	}
}

// capPerRecord applies the max_pairs_per_record safety valve (§4.2): for
// each record with more than max incident pairs, the excess pairs with the
// smallest blocker-tag set (ties broken by the other record's id
// lexicographically) are dropped. A pair is dropped from the final result
// as soon as either endpoint sheds it, which guarantees every record ends
// up with at most max incident pairs regardless of the other endpoint's
// own overflow decisions. The cap is deterministic and applied after the
// (a_id, b_id) union, not per-blocker.
func capPerRecord(pairs []model.CandidatePair, max int) []model.CandidatePair {
	incident := make(map[string][]model.CandidatePair)
	for _, p := range pairs {
		incident[p.AID] = append(incident[p.AID], p)
		incident[p.BID] = append(incident[p.BID], p)
	}

	dropped := make(map[[2]string]bool)
	for _, id := range sortedKeys(incident) {
		ps := incident[id]
		if len(ps) <= max {
			continue
		}
		sort.Slice(ps, func(i, j int) bool {
			li, lj := len(ps[i].Blockers), len(ps[j].Blockers)
			if li != lj {
				return li > lj
			}
			return other(ps[i], id) < other(ps[j], id)
		})
		for _, p := range ps[max:] {
			dropped[p.Key()] = true
		}
	}

	out := make([]model.CandidatePair, 0, len(pairs))
	for _, p := range pairs {
		if !dropped[p.Key()] {
			out = append(out, p)
		}
	}
	model.SortPairs(out)
	return out
}

func other(p model.CandidatePair, id string) string {
	if p.AID == id {
		return p.BID
	}
	return p.AID
}

func sortedKeys(m map[string][]model.CandidatePair) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
