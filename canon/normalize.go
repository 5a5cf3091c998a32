// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"time"

	"github.com/refdedupe/dedupe/internal/errs"
	"github.com/refdedupe/dedupe/internal/model"
)

// fieldTags names the format-specific tags that carry each semantic field,
// plus the author-list separator for that format.
type fieldTags struct {
	title, year, venue, volume, issue, pages, doi, pmid, abstract, typeTag model.Tag
	authors                                                                model.Tag
	authorSep                                                              AuthorSeparator
}

var tagsByFormat = map[Format]fieldTags{
	FormatRIS: {
		title: "TI", year: "PY", venue: "JO", volume: "VL", issue: "IS",
		pages: "SP", doi: "DO", pmid: "", abstract: "AB", typeTag: "TY",
		authors: "AU", authorSep: SepNewline,
	},
	FormatNBIB: {
		title: "TI", year: "DP", venue: "JT", volume: "VI", issue: "IP",
		pages: "PG", doi: "LID", pmid: "PMID", abstract: "AB", typeTag: "PT",
		authors: "FAU", authorSep: SepNewline,
	},
	FormatBibTeX: {
		title: "title", year: "year", venue: "journal", volume: "volume",
		issue: "number", pages: "pages", doi: "doi", pmid: "", abstract: "abstract",
		typeTag: "ENTRYTYPE", authors: "author", authorSep: SepAnd,
	},
	FormatCIW: {
		title: "TI", year: "PY", venue: "SO", volume: "VL", issue: "IS",
		pages: "BP", doi: "DI", pmid: "", abstract: "AB", typeTag: "PT",
		authors: "AU", authorSep: SepSemicolon,
	},
	FormatENW: {
		title: "T", year: "D", venue: "J", volume: "V", issue: "N",
		pages: "P", doi: "R", pmid: "", abstract: "X", typeTag: "0",
		authors: "A", authorSep: SepNewline,
	},
}

// Normalize implements Stage 1 for a single RawRecord, canonicalizing it
// per §4.1. The only failure mode is a RawRecord lacking both an id and a
// source identifier, which makes a stable CanonicalRecord.id impossible to
// derive (§7 InputError); every other malformed field degrades to null
// rather than rejecting the record.
func Normalize(r model.RawRecord, format Format, now time.Time) (*model.CanonicalRecord, error) {
	id, err := stableID(r)
	if err != nil {
		return nil, err
	}

	tags := tagsByFormat[format]

	c := &model.CanonicalRecord{
		ID:     id,
		RawRef: r.ID,
		Type:   model.TypeOther,
	}

	if v, ok := r.Get(tags.title); ok {
		c.Title = NullableText(v)
	}
	if v, ok := r.Get(tags.venue); ok {
		c.Venue = NullableText(v)
	}
	if v, ok := r.Get(tags.abstract); ok {
		c.Abstract = NullableText(v)
	}
	if v, ok := r.Get(tags.volume); ok {
		if n := NormalizeText(v); n != "" {
			c.Volume = &n
		}
	}
	if v, ok := r.Get(tags.issue); ok {
		if n := NormalizeText(v); n != "" {
			c.Issue = &n
		}
	}
	if v, ok := r.Get(tags.year); ok {
		c.Year = NormalizeYear(v, now)
	}
	if v, ok := r.Get(tags.doi); ok {
		c.DOI = NormalizeDOI(v)
	}
	if tags.pmid != "" {
		if v, ok := r.Get(tags.pmid); ok {
			c.PMID = NormalizePMID(v)
		}
	}
	if v, ok := r.Get(tags.pages); ok {
		c.PagesStart, c.PagesEnd = NormalizePages(v)
	}
	if v, ok := r.Get(tags.typeTag); ok {
		c.Type = NormalizeType(format, v)
	}

	var authors []model.Author
	if tags.authorSep == SepAnd || tags.authorSep == SepSemicolon {
		if v, ok := r.Get(tags.authors); ok {
			authors = ParseAuthors(v, tags.authorSep)
		}
	} else {
		for _, v := range r.GetAll(tags.authors) {
			authors = append(authors, ParseAuthors(v, tags.authorSep)...)
		}
	}
	c.Authors = authors

	return c, nil
}

// stableID derives CanonicalRecord.id from the RawRecord's source
// identifier when present, falling back to the RawRecord's own id. A
// RawRecord with neither is an InputError (§7): there is no way to derive
// a stable, unique id for it.
func stableID(r model.RawRecord) (string, error) {
	if r.Source.FilePath != "" {
		return r.Source.String(), nil
	}
	if r.ID != "" {
		return r.ID, nil
	}
	return "", errs.Input("raw record has neither an id nor a source identifier")
}
