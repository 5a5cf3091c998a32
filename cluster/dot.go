// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cluster

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/refdedupe/dedupe/internal/model"
)

// ExportDOT renders the AUTO_DUP and REVIEW pair decisions as a weighted
// undirected graph in DOT format, one node per record id and one edge per
// decision, edge weight equal to the pair's total score and a "decision"
// attribute naming the verdict (SPEC_FULL.md "DOMAIN STACK", gonum graph).
// AUTO_KEEP decisions never contribute edges.
func ExportDOT(decisions []model.PairDecision) ([]byte, error) {
	g := newRecordGraph()
	for _, d := range decisions {
		if d.Decision != model.AutoDup && d.Decision != model.Review {
			continue
		}
		g.SetWeightedEdge(edge{
			f:        g.nodeFor(d.AID),
			t:        g.nodeFor(d.BID),
			w:        d.TotalScore,
			decision: string(d.Decision),
		})
	}
	return dot.Marshal(g, "clusters", "", "\t")
}

type recordGraph struct {
	*simple.WeightedUndirectedGraph
	idFor map[string]int64
}

func newRecordGraph() recordGraph {
	return recordGraph{
		WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, 0),
		idFor:                   make(map[string]int64),
	}
}

func (g recordGraph) nodeFor(id string) graph.Node {
	nodeID, ok := g.idFor[id]
	if ok {
		return g.Node(nodeID)
	}
	nodeID = g.WeightedUndirectedGraph.NewNode().ID()
	g.idFor[id] = nodeID
	n := node{id: nodeID, name: id}
	g.AddNode(n)
	return n
}

type node struct {
	id   int64
	name string
}

func (n node) ID() int64     { return n.id }
func (n node) DOTID() string { return n.name }

type edge struct {
	f, t     graph.Node
	w        float64
	decision string
}

func (e edge) From() graph.Node         { return e.f }
func (e edge) To() graph.Node           { return e.t }
func (e edge) ReversedEdge() graph.Edge { return edge{f: e.t, t: e.f, w: e.w, decision: e.decision} }
func (e edge) Weight() float64          { return e.w }
func (e edge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "weight", Value: fmt.Sprint(e.w)},
		{Key: "decision", Value: e.decision},
	}
}
