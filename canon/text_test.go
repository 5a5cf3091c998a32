// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "casefold and collapse whitespace",
			in:       "  The   DNA  of   Go  ",
			expected: "the dna of go",
		},
		{
			name:     "strip diacritics",
			in:       "Schrödinger's café",
			expected: "schrodinger's cafe",
		},
		{
			name:     "strip latex control sequences and braces",
			in:       "{The DNA} of \\textit{Go}",
			expected: "the dna of go",
		},
		{
			name:     "strip surrounding punctuation",
			in:       "\"A Title.\"",
			expected: "a title",
		},
		{
			name:     "all punctuation normalizes to empty",
			in:       "...",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{"The DNA of Go", "Schrödinger's café", "{Braced} \\textit{text}", ""}
	for _, in := range inputs {
		once := NormalizeText(in)
		twice := NormalizeText(once)
		assert.Equal(t, once, twice, "normalization must be idempotent for %q", in)
	}
}

func TestNullableText(t *testing.T) {
	assert.Nil(t, NullableText("   ..."))
	got := NullableText("A Title")
	if assert.NotNil(t, got) {
		assert.Equal(t, "a title", *got)
	}
}
