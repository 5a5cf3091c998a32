// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package score implements Stage 3 (§4.3): per-field comparators and their
// Fellegi-Sunter log-likelihood-ratio aggregation into a pair's total
// score.
package score

import (
	"github.com/xrash/smetrics"

	"github.com/refdedupe/dedupe/canon"
	"github.com/refdedupe/dedupe/internal/model"
)

const jaroWinklerFloor = 0.6

// compareDOI returns 1.0 if both non-null and equal, 0.0 if both non-null
// and unequal, missingWeight otherwise (§4.3).
func compareDOI(a, b *string, missingWeight float64) float64 {
	return compareExactIdentifier(a, b, missingWeight)
}

// comparePMID has the same shape as compareDOI.
func comparePMID(a, b *string, missingWeight float64) float64 {
	return compareExactIdentifier(a, b, missingWeight)
}

func compareExactIdentifier(a, b *string, missingWeight float64) float64 {
	if a == nil || b == nil {
		return missingWeight
	}
	if *a == *b {
		return 1.0
	}
	return 0.0
}

// compareTitle is Jaro-Winkler on normalized titles, floored to 0 below
// 0.6.
func compareTitle(a, b *string) float64 {
	return jaroWinklerFloored(a, b)
}

// compareVenue is Jaro-Winkler on normalized venues, same floor as title.
func compareVenue(a, b *string) float64 {
	return jaroWinklerFloored(a, b)
}

func jaroWinklerFloored(a, b *string) float64 {
	if a == nil || b == nil {
		return 0
	}
	jw := smetrics.JaroWinkler(*a, *b, 0.7, 4)
	if jw < jaroWinklerFloor {
		return 0
	}
	return jw
}

// compareAuthors is the overlap coefficient on the (family, first_initial)
// tuple sets, missingWeight if either side is empty (§4.3).
func compareAuthors(a, b []model.Author, missingWeight float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return missingWeight
	}
	setA := canon.AuthorKeySet(a)
	setB := canon.AuthorKeySet(b)
	small, large := setA, setB
	if len(large) < len(small) {
		small, large = large, small
	}
	overlap := 0
	for k := range small {
		if large[k] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(small))
}

// compareYear is 1.0 if equal, 0.5 if |Δ|=1, 0.0 if |Δ|>=2, missingWeight
// if either is null (§4.3).
func compareYear(a, b *int, missingWeight float64) float64 {
	if a == nil || b == nil {
		return missingWeight
	}
	d := *a - *b
	if d < 0 {
		d = -d
	}
	switch {
	case d == 0:
		return 1.0
	case d == 1:
		return 0.5
	default:
		return 0.0
	}
}

// compareScalar is exact-equality with missingWeight on null, used for
// Volume, Issue, and Pages (§4.3).
func compareScalar(a, b *string, missingWeight float64) float64 {
	if a == nil || b == nil {
		return missingWeight
	}
	return boolTo01(*a == *b)
}

func comparePages(aStart, aEnd, bStart, bEnd *int, missingWeight float64) float64 {
	if aStart == nil || aEnd == nil || bStart == nil || bEnd == nil {
		return missingWeight
	}
	return boolTo01(*aStart == *bStart && *aEnd == *bEnd)
}

func boolTo01(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
