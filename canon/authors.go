// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"strings"

	"github.com/refdedupe/dedupe/internal/model"
)

// ParseAuthors splits a raw author field on the separator appropriate to
// its source format (" and " for BibTeX, newline for RIS AU/A1, semicolon
// for WoS AU) and parses each name as "Family, Given" or "Given Family"
// into a model.Author with a casefolded family name and given names reduced
// to their first grapheme cluster (§4.1).
func ParseAuthors(raw string, sep AuthorSeparator) []model.Author {
	parts := splitAuthors(raw, sep)
	authors := make([]model.Author, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		a, ok := parseOneAuthor(p)
		if ok {
			authors = append(authors, a)
		}
	}
	return authors
}

// AuthorSeparator names the source-format-specific author list delimiter.
type AuthorSeparator int

const (
	SepAnd       AuthorSeparator = iota // BibTeX: " and "
	SepNewline                          // RIS: AU/A1, one per field/line
	SepSemicolon                        // WoS: AU
)

func splitAuthors(raw string, sep AuthorSeparator) []string {
	switch sep {
	case SepAnd:
		return strings.Split(raw, " and ")
	case SepSemicolon:
		return strings.Split(raw, ";")
	case SepNewline:
		fallthrough
	default:
		return strings.Split(raw, "\n")
	}
}

func parseOneAuthor(name string) (model.Author, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Author{}, false
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return model.Author{
			Family:        casefold(strings.TrimSpace(family)),
			GivenInitials: initialsOf(given),
		}, true
	}
	// "Given Family": the last whitespace-separated token is the family
	// name, everything before it is given names.
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return model.Author{}, false
	}
	if len(fields) == 1 {
		return model.Author{Family: casefold(fields[0])}, true
	}
	family := fields[len(fields)-1]
	given := strings.Join(fields[:len(fields)-1], " ")
	return model.Author{
		Family:        casefold(family),
		GivenInitials: initialsOf(given),
	}, true
}

func casefold(s string) string {
	return NormalizeText(s)
}

// initialsOf reduces a given-name string ("John Henry", "J.H.", "Jean-Paul")
// to a sequence of initials, one per grapheme-separated name component.
func initialsOf(given string) string {
	given = strings.ReplaceAll(given, ".", " ")
	fields := strings.FieldsFunc(given, func(r rune) bool {
		return r == ' ' || r == '-'
	})
	var b strings.Builder
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		r := []rune(f)
		b.WriteString(casefold(string(r[0])))
	}
	return b.String()
}

// AuthorKeySet builds the set of (family, first_initial) tuples used by
// the Authors field comparator's overlap coefficient (§4.3). Merge's
// author-list deduplication (§4.6) uses the same Author.Key tuples
// directly rather than this set.
func AuthorKeySet(authors []model.Author) map[string]bool {
	set := make(map[string]bool, len(authors))
	for _, a := range authors {
		set[a.Key()] = true
	}
	return set
}
