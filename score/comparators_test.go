// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestCompareExactIdentifier(t *testing.T) {
	assert.Equal(t, 1.0, compareDOI(strp("10.1/x"), strp("10.1/x"), 0.5))
	assert.Equal(t, 0.0, compareDOI(strp("10.1/x"), strp("10.1/y"), 0.5))
	assert.Equal(t, 0.5, compareDOI(nil, strp("10.1/x"), 0.5))
	assert.Equal(t, 0.5, compareDOI(nil, nil, 0.5))
}

func TestJaroWinklerFloored(t *testing.T) {
	assert.Equal(t, 1.0, compareTitle(strp("same title"), strp("same title")))
	assert.Equal(t, 0.0, compareTitle(nil, strp("x")))
	assert.Equal(t, 0.0, compareTitle(strp("completely different"), strp("not even close at all")))
}

func TestCompareYear(t *testing.T) {
	assert.Equal(t, 1.0, compareYear(intp(2020), intp(2020), 0.5))
	assert.Equal(t, 0.5, compareYear(intp(2020), intp(2021), 0.5))
	assert.Equal(t, 0.0, compareYear(intp(2020), intp(2023), 0.5))
	assert.Equal(t, 0.5, compareYear(nil, intp(2020), 0.5))
}

func TestComparePages(t *testing.T) {
	assert.Equal(t, 1.0, comparePages(intp(10), intp(20), intp(10), intp(20), 0.5))
	assert.Equal(t, 0.0, comparePages(intp(10), intp(20), intp(11), intp(20), 0.5))
	assert.Equal(t, 0.5, comparePages(nil, intp(20), intp(10), intp(20), 0.5))
}
