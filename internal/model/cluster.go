// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "sort"

// Cluster is the Stage 5 output: a connected component of AUTO_DUP edges,
// pruned for anti-transitivity, together with its chosen survivor.
type Cluster struct {
	ClusterID             string         `json:"cluster_id"`
	Members               []string       `json:"members"`
	Edges                 []PairDecision `json:"-"`
	SurvivorID            string         `json:"survivor_id"`
	AntiTransitivitySplit bool           `json:"anti_transitivity_split"`
}

// MinMember returns the lexicographically smallest member id, used both as
// the cluster sort key (§5) and as the basis of ClusterID.
func (c Cluster) MinMember() string {
	m := c.Members[0]
	for _, id := range c.Members[1:] {
		if id < m {
			m = id
		}
	}
	return m
}

// SortClusters sorts clusters by min(member_id) per §5's ordering guarantee.
func SortClusters(clusters []Cluster) {
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].MinMember() < clusters[j].MinMember()
	})
}

func (c Cluster) ToMap() map[string]interface{} {
	members := append([]string(nil), c.Members...)
	sort.Strings(members)
	edges := make([]map[string]interface{}, len(c.Edges))
	for i, e := range c.Edges {
		edges[i] = e.ToMap()
	}
	return map[string]interface{}{
		"cluster_id":              c.ClusterID,
		"members":                 members,
		"edges":                   edges,
		"survivor_id":             c.SurvivorID,
		"anti_transitivity_split": c.AntiTransitivitySplit,
	}
}

// MergedRecord is a CanonicalRecord representing a cluster survivor, with
// per-field provenance recording which member contributed each value.
type MergedRecord struct {
	CanonicalRecord
	ClusterID   string                    `json:"cluster_id"`
	Provenance  map[FieldName]string      `json:"-"`
}

func (m MergedRecord) ToMap() map[string]interface{} {
	out := m.CanonicalRecord.ToMap()
	out["cluster_id"] = m.ClusterID
	prov := make(map[string]interface{}, len(m.Provenance))
	for _, f := range MergeFieldOrder {
		if v, ok := m.Provenance[f]; ok {
			prov[string(f)] = v
		}
	}
	out["provenance"] = prov
	return out
}
