// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var fourDigitYear = regexp.MustCompile(`\b(\d{4})\b`)

// NormalizeYear returns the first 4-digit group in [1500, current_year+1]
// found in raw (§4.1), or nil if none qualifies.
func NormalizeYear(raw string, now time.Time) *int {
	max := now.Year() + 1
	for _, m := range fourDigitYear.FindAllStringSubmatch(raw, -1) {
		y, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if y >= 1500 && y <= max {
			return &y
		}
	}
	return nil
}

var pageSplitter = regexp.MustCompile(`--|\x{2013}|-`)

// NormalizePages splits raw on "-", "--", or an en-dash and coerces the
// start/end to integers when both sides are numeric (§4.1). When only a
// single page number is present, start==end. Non-numeric page ranges
// (e.g. "A1-A12") yield nil, nil — the record is never rejected, the field
// is simply null.
func NormalizePages(raw string) (start, end *int) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := pageSplitter.Split(raw, 2)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 || parts[1] == "" {
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, nil
		}
		return &n, &n
	}
	s, errS := strconv.Atoi(parts[0])
	e, errE := strconv.Atoi(parts[1])
	if errS != nil || errE != nil {
		return nil, nil
	}
	return &s, &e
}
