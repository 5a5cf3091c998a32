// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/refdedupe/dedupe/internal/model"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestResolvePrefersRecordWithDOIAsSurvivor(t *testing.T) {
	records := map[string]model.CanonicalRecord{
		"a": {ID: "a", Title: strp("a title")},
		"b": {ID: "b", Title: strp("a title"), DOI: strp("10.1/x")},
	}
	c := model.Cluster{ClusterID: "cluster_a", Members: []string{"a", "b"}}

	mr := Resolve(c, records)
	assert.Equal(t, "b", mr.ID)
	assert.Equal(t, "b", mr.Provenance[model.FieldDOI])
}

func TestResolveFillsMissingFieldsFromOtherMembers(t *testing.T) {
	records := map[string]model.CanonicalRecord{
		"a": {ID: "a", DOI: strp("10.1/x"), Venue: nil},
		"b": {ID: "b", Venue: strp("a venue")},
	}
	c := model.Cluster{ClusterID: "cluster_a", Members: []string{"a", "b"}}

	mr := Resolve(c, records)
	assert.Equal(t, "a", mr.ID)
	if assert.NotNil(t, mr.Venue) {
		assert.Equal(t, "a venue", *mr.Venue)
	}
	assert.Equal(t, "b", mr.Provenance[model.FieldVenue])
}

func TestResolveUnionsAuthorsAcrossMembers(t *testing.T) {
	records := map[string]model.CanonicalRecord{
		"a": {ID: "a", Authors: []model.Author{{Family: "Smith", GivenInitials: "J"}}},
		"b": {ID: "b", Authors: []model.Author{
			{Family: "Smith", GivenInitials: "J"},
			{Family: "Doe", GivenInitials: "A"},
		}},
	}
	c := model.Cluster{ClusterID: "cluster_a", Members: []string{"a", "b"}}

	mr := Resolve(c, records)
	assert.Len(t, mr.Authors, 2)
	assert.Equal(t, mr.ID, mr.Provenance[model.FieldAuthors])
}

func TestResolveKeepsLongestAbstract(t *testing.T) {
	records := map[string]model.CanonicalRecord{
		"a": {ID: "a", Abstract: strp("short")},
		"b": {ID: "b", Abstract: strp("a much longer abstract text")},
	}
	c := model.Cluster{ClusterID: "cluster_a", Members: []string{"a", "b"}}

	mr := Resolve(c, records)
	if assert.NotNil(t, mr.Abstract) {
		assert.Equal(t, "a much longer abstract text", *mr.Abstract)
	}
	assert.Equal(t, "b", mr.Provenance[model.FieldAbstract])
}

func TestResolveTiebreaksOnMostRecentYearThenID(t *testing.T) {
	records := map[string]model.CanonicalRecord{
		"z": {ID: "z", Year: intp(2019)},
		"a": {ID: "a", Year: intp(2021)},
	}
	c := model.Cluster{ClusterID: "cluster_a", Members: []string{"a", "z"}}

	mr := Resolve(c, records)
	assert.Equal(t, "a", mr.ID, "the more recent record should be chosen as survivor")
}
