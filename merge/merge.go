// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package merge implements Stage 6 (§4.6): survivor selection and
// field-level merge of a cluster's member records into one MergedRecord,
// with per-field provenance.
package merge

import (
	"math"
	"sort"

	"github.com/refdedupe/dedupe/internal/model"
)

// Resolve merges a cluster's member records, selecting a survivor and
// filling each field from the member that best supplies it.
func Resolve(c model.Cluster, records map[string]model.CanonicalRecord) model.MergedRecord {
	members := make([]model.CanonicalRecord, 0, len(c.Members))
	for _, id := range c.Members {
		if r, ok := records[id]; ok {
			members = append(members, r)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	survivor := chooseSurvivor(members)
	merged := survivor
	prov := make(map[model.FieldName]string, len(model.MergeFieldOrder))

	merged.DOI, prov[model.FieldDOI] = firstNonNullString(members, survivor.ID, func(c model.CanonicalRecord) *string { return c.DOI })
	merged.PMID, prov[model.FieldPMID] = firstNonNullString(members, survivor.ID, func(c model.CanonicalRecord) *string { return c.PMID })
	merged.Title, prov[model.FieldTitle] = firstNonNullString(members, survivor.ID, func(c model.CanonicalRecord) *string { return c.Title })
	merged.Venue, prov[model.FieldVenue] = firstNonNullString(members, survivor.ID, func(c model.CanonicalRecord) *string { return c.Venue })
	merged.Volume, prov[model.FieldVolume] = firstNonNullString(members, survivor.ID, func(c model.CanonicalRecord) *string { return c.Volume })
	merged.Issue, prov[model.FieldIssue] = firstNonNullString(members, survivor.ID, func(c model.CanonicalRecord) *string { return c.Issue })
	merged.Year, prov[model.FieldYear] = firstNonNullInt(members, survivor.ID, func(c model.CanonicalRecord) *int { return c.Year })
	mergePages(&merged, members, survivor.ID, prov)
	mergeAuthors(&merged, members, prov)
	mergeAbstract(&merged, members, prov)
	mergeType(&merged, members, survivor.ID, prov)
	for f, id := range prov {
		if id == "" {
			delete(prov, f)
		}
	}

	return model.MergedRecord{
		CanonicalRecord: merged,
		ClusterID:       c.ClusterID,
		Provenance:      prov,
	}
}

// chooseSurvivor implements §4.6's tiebreak chain: non-null DOI, then
// non-null PMID, then most non-null fields, then longest abstract, then
// most recent year, then lexicographically smallest id. members is
// already sorted by id ascending, so a strict "better" comparison that
// never replaces on ties resolves the final tiebreak for free.
func chooseSurvivor(members []model.CanonicalRecord) model.CanonicalRecord {
	best := members[0]
	for _, m := range members[1:] {
		if better(m, best) {
			best = m
		}
	}
	return best
}

func better(a, b model.CanonicalRecord) bool {
	if (a.DOI != nil) != (b.DOI != nil) {
		return a.DOI != nil
	}
	if (a.PMID != nil) != (b.PMID != nil) {
		return a.PMID != nil
	}
	if na, nb := a.NonNullFieldCount(), b.NonNullFieldCount(); na != nb {
		return na > nb
	}
	if la, lb := abstractLen(a), abstractLen(b); la != lb {
		return la > lb
	}
	if ya, yb := yearOrMin(a), yearOrMin(b); ya != yb {
		return ya > yb
	}
	return a.ID < b.ID
}

func abstractLen(c model.CanonicalRecord) int {
	if c.Abstract == nil {
		return -1
	}
	return len(*c.Abstract)
}

func yearOrMin(c model.CanonicalRecord) int {
	if c.Year == nil {
		return math.MinInt32
	}
	return *c.Year
}

// firstNonNullString fills a scalar string field from the survivor when it
// has one, otherwise from the lexicographically earliest member that does
// (members is sorted by id), recording which member contributed it.
func firstNonNullString(members []model.CanonicalRecord, survivorID string, get func(model.CanonicalRecord) *string) (*string, string) {
	for _, m := range members {
		if m.ID == survivorID {
			if v := get(m); v != nil {
				return v, survivorID
			}
			break
		}
	}
	for _, m := range members {
		if v := get(m); v != nil {
			return v, m.ID
		}
	}
	return nil, ""
}

func firstNonNullInt(members []model.CanonicalRecord, survivorID string, get func(model.CanonicalRecord) *int) (*int, string) {
	for _, m := range members {
		if m.ID == survivorID {
			if v := get(m); v != nil {
				return v, survivorID
			}
			break
		}
	}
	for _, m := range members {
		if v := get(m); v != nil {
			return v, m.ID
		}
	}
	return nil, ""
}

// mergePages fills pages_start/pages_end as a pair from a single member,
// never mixing a start from one member with an end from another.
func mergePages(merged *model.CanonicalRecord, members []model.CanonicalRecord, survivorID string, prov map[model.FieldName]string) {
	pick := func(m model.CanonicalRecord) bool { return m.PagesStart != nil && m.PagesEnd != nil }
	for _, m := range members {
		if m.ID == survivorID && pick(m) {
			merged.PagesStart, merged.PagesEnd = m.PagesStart, m.PagesEnd
			prov[model.FieldPages] = survivorID
			return
		}
	}
	for _, m := range members {
		if pick(m) {
			merged.PagesStart, merged.PagesEnd = m.PagesStart, m.PagesEnd
			prov[model.FieldPages] = m.ID
			return
		}
	}
}

// mergeAuthors unions each member's author list, deduplicating by
// (family, first_initial) and keeping the survivor's own order first,
// then each other member's new authors in member-id order (§4.6).
// Provenance for a union field names the survivor, the ordering anchor
// the union was built around, not any single contributing member.
func mergeAuthors(merged *model.CanonicalRecord, members []model.CanonicalRecord, prov map[model.FieldName]string) {
	ordered := make([]model.CanonicalRecord, 0, len(members))
	for _, m := range members {
		if m.ID == merged.ID {
			ordered = append(ordered, m)
		}
	}
	for _, m := range members {
		if m.ID != merged.ID {
			ordered = append(ordered, m)
		}
	}
	seen := make(map[string]bool)
	var union []model.Author
	for _, m := range ordered {
		for _, a := range m.Authors {
			k := a.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			union = append(union, a)
		}
	}
	merged.Authors = union
	prov[model.FieldAuthors] = merged.ID
}

// mergeAbstract keeps the longest non-null abstract across members
// (§4.6).
func mergeAbstract(merged *model.CanonicalRecord, members []model.CanonicalRecord, prov map[model.FieldName]string) {
	var best *string
	bestID := ""
	bestLen := -1
	for _, m := range members {
		if m.Abstract == nil {
			continue
		}
		if l := len(*m.Abstract); l > bestLen {
			best, bestID, bestLen = m.Abstract, m.ID, l
		}
	}
	merged.Abstract = best
	if bestID != "" {
		prov[model.FieldAbstract] = bestID
	}
}

// mergeType keeps the survivor's type when set, otherwise the
// lexicographically earliest member's.
func mergeType(merged *model.CanonicalRecord, members []model.CanonicalRecord, survivorID string, prov map[model.FieldName]string) {
	for _, m := range members {
		if m.ID == survivorID && m.Type != "" {
			merged.Type = m.Type
			prov[model.FieldType] = survivorID
			return
		}
	}
	for _, m := range members {
		if m.Type != "" {
			merged.Type = m.Type
			prov[model.FieldType] = m.ID
			return
		}
	}
}
