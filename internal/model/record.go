// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model defines the record types shared across every stage of the
// deduplication pipeline: RawRecord in, CanonicalRecord out of normalize,
// through to MergedRecord out of merge.
package model

import "fmt"

// FieldName is a closed enumeration of the fields participating in pairwise
// scoring and field-level merge. Keeping this closed (rather than a free-form
// string map, as a naive port of the source system would use) is required to
// keep Fellegi-Sunter scoring byte-deterministic: fields are always visited
// in the same fixed order.
type FieldName string

const (
	FieldTitle   FieldName = "title"
	FieldAuthors FieldName = "authors"
	FieldYear    FieldName = "year"
	FieldVenue   FieldName = "venue"
	FieldVolume  FieldName = "volume"
	FieldIssue   FieldName = "issue"
	FieldPages   FieldName = "pages"
	FieldDOI     FieldName = "doi"
	FieldPMID    FieldName = "pmid"

	// FieldAbstract and FieldType take part in merge provenance but not in
	// Fellegi-Sunter scoring, so they are excluded from FieldOrder.
	FieldAbstract FieldName = "abstract"
	FieldType     FieldName = "type"
)

// MergeFieldOrder is FieldOrder extended with the provenance-only fields,
// in the fixed order provenance is enumerated when rendering a
// MergedRecord.
var MergeFieldOrder = append(append([]FieldName{}, FieldOrder...), FieldAbstract, FieldType)

// FieldOrder is the fixed enumeration order used everywhere a field-wise
// computation must be deterministic: aggregation in score, agreement_pattern
// bit assignment, and provenance iteration in merge.
var FieldOrder = []FieldName{
	FieldDOI,
	FieldPMID,
	FieldTitle,
	FieldAuthors,
	FieldYear,
	FieldVenue,
	FieldVolume,
	FieldIssue,
	FieldPages,
}

// RecordType is the closed set of publication types a CanonicalRecord may
// carry, per §4.1's format-specific type mapping table.
type RecordType string

const (
	TypeJournal    RecordType = "journal"
	TypeConference RecordType = "conference"
	TypeBook       RecordType = "book"
	TypeChapter    RecordType = "chapter"
	TypeThesis     RecordType = "thesis"
	TypePreprint   RecordType = "preprint"
	TypeOther      RecordType = "other"
)

// SourceID identifies where a RawRecord came from, used to build the stable
// CanonicalRecord.id.
type SourceID struct {
	FilePath   string `json:"file_path"`
	ByteOffset int64  `json:"byte_offset"`
}

func (s SourceID) String() string {
	return fmt.Sprintf("%s@%d", s.FilePath, s.ByteOffset)
}

// Tag is a format-specific field tag, e.g. "TI", "AU", "DO".
type Tag string

// RawField is a single (tag, value) pair from a source citation record.
type RawField struct {
	Tag   Tag    `json:"tag"`
	Value string `json:"value"`
}

// RawRecord is the uniform record shape handed to the core by external
// format-specific tokenizers (RIS, NBIB, BibTeX, CIW, ENW). The core never
// parses files itself; it only consumes RawRecord values.
type RawRecord struct {
	ID     string     `json:"id"`
	Fields []RawField `json:"fields"`
	Source SourceID   `json:"source"`
}

// Get returns the first value for tag, and whether it was present.
func (r RawRecord) Get(tag Tag) (string, bool) {
	for _, f := range r.Fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

// GetAll returns every value for tag, in record order.
func (r RawRecord) GetAll(tag Tag) []string {
	var vs []string
	for _, f := range r.Fields {
		if f.Tag == tag {
			vs = append(vs, f.Value)
		}
	}
	return vs
}

// Author is an ordered name component: a family name and a sequence of given
// initials, both already casefolded per §4.1.
type Author struct {
	Family        string `json:"family"`
	GivenInitials string `json:"given_initials"`
}

// Key returns the (family, first_initial) tuple used for author-set
// comparisons in score and merge.
func (a Author) Key() string {
	first := ""
	if len(a.GivenInitials) > 0 {
		first = a.GivenInitials[:1]
	}
	return a.Family + "\x00" + first
}

// CanonicalRecord is the normalized unit of deduplication produced by Stage 1
// and consumed, immutably, by every later stage.
type CanonicalRecord struct {
	ID          string     `json:"id"`
	Title       *string    `json:"title"`
	Authors     []Author   `json:"authors"`
	Year        *int       `json:"year"`
	Venue       *string    `json:"venue"`
	Volume      *string    `json:"volume"`
	Issue       *string    `json:"issue"`
	PagesStart  *int       `json:"pages_start"`
	PagesEnd    *int       `json:"pages_end"`
	DOI         *string    `json:"doi"`
	PMID        *string    `json:"pmid"`
	Abstract    *string    `json:"abstract"`
	Type        RecordType `json:"type"`
	RawRef      string     `json:"raw_ref"`
}

// NonNullFieldCount returns the number of non-null scalar/identifier fields,
// used by merge's survivor tiebreak ("most non-null fields").
func (c CanonicalRecord) NonNullFieldCount() int {
	n := 0
	if c.Title != nil {
		n++
	}
	if len(c.Authors) > 0 {
		n++
	}
	if c.Year != nil {
		n++
	}
	if c.Venue != nil {
		n++
	}
	if c.Volume != nil {
		n++
	}
	if c.Issue != nil {
		n++
	}
	if c.PagesStart != nil {
		n++
	}
	if c.PagesEnd != nil {
		n++
	}
	if c.DOI != nil {
		n++
	}
	if c.PMID != nil {
		n++
	}
	if c.Abstract != nil {
		n++
	}
	return n
}

// ToMap renders the record as a map for JSON encoding, so that
// encoding/json's built-in alphabetical map-key sort satisfies §6's
// "keys in sorted order" artifact requirement without a bespoke encoder.
func (c CanonicalRecord) ToMap() map[string]interface{} {
	authors := make([]map[string]interface{}, len(c.Authors))
	for i, a := range c.Authors {
		authors[i] = map[string]interface{}{
			"family":         a.Family,
			"given_initials": a.GivenInitials,
		}
	}
	return map[string]interface{}{
		"id":           c.ID,
		"title":        c.Title,
		"authors":      authors,
		"year":         c.Year,
		"venue":        c.Venue,
		"volume":       c.Volume,
		"issue":        c.Issue,
		"pages_start":  c.PagesStart,
		"pages_end":    c.PagesEnd,
		"doi":          c.DOI,
		"pmid":         c.PMID,
		"abstract":     c.Abstract,
		"type":         c.Type,
		"raw_ref":      c.RawRef,
	}
}
