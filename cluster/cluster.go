// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cluster implements Stage 5 (§4.5): union-find over AUTO_DUP
// edges, followed by the anti-transitivity guard that splits any
// component containing a known pair scored below t_low.
package cluster

import (
	"sort"

	"github.com/refdedupe/dedupe/internal/model"
)

// Generate groups decisions into clusters by AUTO_DUP connectivity, then
// repeatedly removes a component's weakest AUTO_DUP edge until every
// component of 3 or more members contains no known pair scored below
// tLow (§4.5's anti-transitivity guard). REVIEW and AUTO_KEEP decisions
// never contribute edges, but their scores still participate in the
// guard when they fall within an otherwise-connected component.
func Generate(decisions []model.PairDecision, tLow float64) []model.Cluster {
	scoreOf := make(map[[2]string]float64, len(decisions))
	var dupEdges []model.PairDecision
	for _, d := range decisions {
		scoreOf[d.CandidatePair.Key()] = d.TotalScore
		if d.Decision == model.AutoDup {
			dupEdges = append(dupEdges, d)
		}
	}

	uf := newUnionFind()
	for _, e := range dupEdges {
		uf.union(e.AID, e.BID)
	}

	groups := make(map[string][]model.PairDecision)
	for _, e := range dupEdges {
		root := uf.find(e.AID)
		groups[root] = append(groups[root], e)
	}

	var clusters []model.Cluster
	for _, edges := range groups {
		clusters = append(clusters, splitRecursive(edges, scoreOf, tLow, false)...)
	}

	assignIDs(clusters)
	model.SortClusters(clusters)
	return clusters
}

func splitRecursive(edges []model.PairDecision, scoreOf map[[2]string]float64, tLow float64, wasSplit bool) []model.Cluster {
	members := membersOf(edges)
	if len(members) < 2 {
		return nil
	}
	if len(members) >= 3 {
		if _, violated := findViolation(members, edges, scoreOf, tLow); violated {
			weak := weakestEdge(edges)
			remaining := removeEdge(edges, weak)

			uf := newUnionFind()
			for _, id := range members {
				uf.find(id)
			}
			for _, e := range remaining {
				uf.union(e.AID, e.BID)
			}
			groups := make(map[string][]model.PairDecision)
			for _, e := range remaining {
				groups[uf.find(e.AID)] = append(groups[uf.find(e.AID)], e)
			}
			var out []model.Cluster
			for _, g := range groups {
				out = append(out, splitRecursive(g, scoreOf, tLow, true)...)
			}
			return out
		}
	}
	return []model.Cluster{{
		Members:               members,
		Edges:                 edges,
		AntiTransitivitySplit: wasSplit,
	}}
}

// findViolation reports the first member pair, in (a_id, b_id) order, that
// is known (was scored) but not itself an AUTO_DUP edge, and whose score
// falls below tLow: evidence that the transitive closure implied by the
// component's AUTO_DUP edges overreaches.
func findViolation(members []string, edges []model.PairDecision, scoreOf map[[2]string]float64, tLow float64) ([2]string, bool) {
	isDup := make(map[[2]string]bool, len(edges))
	for _, e := range edges {
		isDup[e.CandidatePair.Key()] = true
	}
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			key := pairKey(members[i], members[j])
			if isDup[key] {
				continue
			}
			if score, ok := scoreOf[key]; ok && score < tLow {
				return key, true
			}
		}
	}
	return [2]string{}, false
}

func pairKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// weakestEdge returns the lowest-scoring edge, ties broken by (a_id,
// b_id), so the split outcome is deterministic.
func weakestEdge(edges []model.PairDecision) model.PairDecision {
	w := edges[0]
	for _, e := range edges[1:] {
		switch {
		case e.TotalScore < w.TotalScore:
			w = e
		case e.TotalScore == w.TotalScore && e.CandidatePair.Less(w.CandidatePair):
			w = e
		}
	}
	return w
}

func removeEdge(edges []model.PairDecision, target model.PairDecision) []model.PairDecision {
	out := make([]model.PairDecision, 0, len(edges)-1)
	removed := false
	for _, e := range edges {
		if !removed && e.CandidatePair.Key() == target.CandidatePair.Key() {
			removed = true
			continue
		}
		out = append(out, e)
	}
	return out
}

func membersOf(edges []model.PairDecision) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range edges {
		if !seen[e.AID] {
			seen[e.AID] = true
			out = append(out, e.AID)
		}
		if !seen[e.BID] {
			seen[e.BID] = true
			out = append(out, e.BID)
		}
	}
	sort.Strings(out)
	return out
}

func assignIDs(clusters []model.Cluster) {
	for i := range clusters {
		clusters[i].ClusterID = "cluster_" + clusters[i].MinMember()
	}
}

type unionFind struct{ parent map[string]string }

func newUnionFind() *unionFind { return &unionFind{parent: make(map[string]string)} }

func (u *unionFind) find(x string) string {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
	}
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}
