// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refdedupe/dedupe/canon"
	"github.com/refdedupe/dedupe/internal/model"
)

func fieldValue(fields []model.RawField, tag string) (string, bool) {
	for _, f := range fields {
		if string(f.Tag) == tag {
			return f.Value, true
		}
	}
	return "", false
}

func TestParseRIS(t *testing.T) {
	src := "TY  - JOUR\nTI  - A Title\nAU  - Smith, John\nAU  - Doe, Jane\nPY  - 2020\nER  - \n"
	records, err := Parse(strings.NewReader(src), "test.ris", canon.FormatRIS)
	require.NoError(t, err)
	require.Len(t, records, 1)

	v, ok := fieldValue(records[0].Fields, "TI")
	require.True(t, ok)
	assert.Equal(t, "A Title", v)

	var authors int
	for _, f := range records[0].Fields {
		if f.Tag == "AU" {
			authors++
		}
	}
	assert.Equal(t, 2, authors)
}

func TestParseRISMultipleRecords(t *testing.T) {
	src := "TY  - JOUR\nTI  - First\nER  - \nTY  - JOUR\nTI  - Second\nER  - \n"
	records, err := Parse(strings.NewReader(src), "test.ris", canon.FormatRIS)
	require.NoError(t, err)
	require.Len(t, records, 2)

	v1, _ := fieldValue(records[0].Fields, "TI")
	v2, _ := fieldValue(records[1].Fields, "TI")
	assert.Equal(t, "First", v1)
	assert.Equal(t, "Second", v2)
	assert.NotEqual(t, records[0].ID, records[1].ID, "each record needs a distinct id derived from its offset")
}

func TestParseNBIB(t *testing.T) {
	src := "PMID- 12345\nTI  - A Title\n      continued on the next line\nAU  - Smith J\n\n"
	records, err := Parse(strings.NewReader(src), "test.nbib", canon.FormatNBIB)
	require.NoError(t, err)
	require.Len(t, records, 1)

	pmid, ok := fieldValue(records[0].Fields, "PMID")
	require.True(t, ok)
	assert.Equal(t, "12345", pmid)

	ti, ok := fieldValue(records[0].Fields, "TI")
	require.True(t, ok)
	assert.Equal(t, "A Title continued on the next line", ti, "a continuation line should fold into the previous field's value")
}

func TestParseCIW(t *testing.T) {
	src := "PT J\nTI A Title\nAU Smith, J\nPY 2020\nER\n"
	records, err := Parse(strings.NewReader(src), "test.ciw", canon.FormatCIW)
	require.NoError(t, err)
	require.Len(t, records, 1)

	v, ok := fieldValue(records[0].Fields, "TI")
	require.True(t, ok)
	assert.Equal(t, "A Title", v)
}

func TestParseENW(t *testing.T) {
	src := "%0 Journal Article\n%T A Title\n%A Smith, John\n\n"
	records, err := Parse(strings.NewReader(src), "test.enw", canon.FormatENW)
	require.NoError(t, err)
	require.Len(t, records, 1)

	v, ok := fieldValue(records[0].Fields, "T")
	require.True(t, ok)
	assert.Equal(t, "A Title", v)
}

func TestParseBibTeX(t *testing.T) {
	src := "@article{smith2020,\n  title = {A Title},\n  author = {Smith, John and Doe, Jane},\n  year = {2020},\n}\n"
	records, err := Parse(strings.NewReader(src), "test.bib", canon.FormatBibTeX)
	require.NoError(t, err)
	require.Len(t, records, 1)

	entryType, ok := fieldValue(records[0].Fields, "ENTRYTYPE")
	require.True(t, ok)
	assert.Equal(t, "article", entryType)

	title, ok := fieldValue(records[0].Fields, "title")
	require.True(t, ok)
	assert.Equal(t, "A Title", title)

	author, ok := fieldValue(records[0].Fields, "author")
	require.True(t, ok)
	assert.Equal(t, "Smith, John and Doe, Jane", author)
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "test.xyz", canon.Format("bogus"))
	assert.Error(t, err)
}
