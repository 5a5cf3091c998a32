// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"regexp"
	"strings"
)

var (
	doiURLPrefix = regexp.MustCompile(`(?i)^https?://(dx\.)?doi\.org/`)
	doiScheme    = regexp.MustCompile(`(?i)^doi:\s*`)
	doiPattern   = regexp.MustCompile(`^10\.[^/\s]+/\S+$`)
	pmidDigits   = regexp.MustCompile(`[^0-9]`)
)

// NormalizeDOI strips URL prefixes and the doi: scheme, lowercases, and
// validates against 10\.[^/\s]+/\S+ (§4.1). Returns nil for values that
// don't match after stripping.
func NormalizeDOI(raw string) *string {
	s := strings.TrimSpace(raw)
	s = doiURLPrefix.ReplaceAllString(s, "")
	s = doiScheme.ReplaceAllString(s, "")
	s = strings.ToLower(strings.TrimSpace(s))
	if !doiPattern.MatchString(s) {
		return nil
	}
	return &s
}

// NormalizePMID keeps digits only and rejects an empty result (§4.1).
func NormalizePMID(raw string) *string {
	s := pmidDigits.ReplaceAllString(raw, "")
	if s == "" {
		return nil
	}
	return &s
}
