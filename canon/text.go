// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package canon implements Stage 1 (Normalize, §4.1): canonicalizing a
// RawRecord into a CanonicalRecord. Every function here is a pure function
// of its input, so normalize(normalize(r)) == normalize(r) holds by
// construction (§8 invariant 2) — unknown or malformed fields degrade to
// null rather than rejecting the record.
package canon

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// latexControlSeq matches a LaTeX control sequence: a backslash followed
// by a run of letters ("\textit") or by any single other character ("\%",
// "\&").
var latexControlSeq = regexp.MustCompile(`\\[a-zA-Z]+|\\.`)

var caseFolder = cases.Fold()

// diacriticStripper composes NFKD decomposition, removal of the Unicode Mn
// (nonspacing mark) category, and NFC recomposition — the idiomatic
// golang.org/x/text pipeline for stripping diacritics while keeping base
// letters.
var diacriticStripper = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeText implements the Title/Venue/Abstract normalization recipe
// from §4.1: NFKC, casefold, strip diacritics, remove LaTeX control
// sequences and surrounding braces, collapse whitespace, strip leading and
// trailing punctuation. Returns "" for an all-punctuation/whitespace input;
// callers turn "" into a null field.
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = stripLaTeX(s)
	folded, _, err := transform.String(caseFolder, s)
	if err == nil {
		s = folded
	} else {
		s = strings.ToLower(s)
	}
	stripped, _, err := transform.String(diacriticStripper, s)
	if err == nil {
		s = stripped
	}
	s = collapseWhitespace(s)
	s = strings.TrimFunc(s, isStrippablePunct)
	return s
}

// stripLaTeX removes LaTeX control sequences ("\textit", "\%", ...) and the
// braces used for grouping, which BibTeX titles frequently carry (e.g.
// "{The DNA} of {Go}").
func stripLaTeX(s string) string {
	s = latexControlSeq.ReplaceAllString(s, "")
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return s
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func isStrippablePunct(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', ';', ':', '!', '?', '"', '\'', '-', '_', '/':
		return true
	}
	return false
}

// NullableText returns nil if NormalizeText(s) is empty, else a pointer to
// the normalized text.
func NullableText(s string) *string {
	n := NormalizeText(s)
	if n == "" {
		return nil
	}
	return &n
}
