// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/refdedupe/dedupe/internal/model"
)

func dupDecision(a, b string, score float64) model.PairDecision {
	return model.PairDecision{
		ScoredPair: model.ScoredPair{CandidatePair: model.NewPair(a, b, model.BlockerDOI), TotalScore: score},
		Decision:   model.AutoDup,
	}
}

func reviewDecision(a, b string, score float64) model.PairDecision {
	return model.PairDecision{
		ScoredPair: model.ScoredPair{CandidatePair: model.NewPair(a, b, model.BlockerDOI), TotalScore: score},
		Decision:   model.Review,
	}
}

func TestGenerateClustersConnectedComponent(t *testing.T) {
	decisions := []model.PairDecision{
		dupDecision("r1", "r2", 0.9),
		dupDecision("r2", "r3", 0.85),
	}
	clusters := Generate(decisions, 0.3)
	if assert.Len(t, clusters, 1) {
		assert.ElementsMatch(t, []string{"r1", "r2", "r3"}, clusters[0].Members)
		assert.False(t, clusters[0].AntiTransitivitySplit)
	}
}

func TestGenerateSplitsOnAntiTransitivityViolation(t *testing.T) {
	decisions := []model.PairDecision{
		dupDecision("r1", "r2", 0.9),
		dupDecision("r2", "r3", 0.9),
		reviewDecision("r1", "r3", 0.1),
	}
	clusters := Generate(decisions, 0.3)

	// The weakest of the two tied edges, (r1,r2), is removed, leaving a
	// single two-member cluster {r2,r3} (the orphaned r1 forms no
	// cluster of its own, since a cluster needs at least 2 members).
	if assert.Len(t, clusters, 1) {
		assert.ElementsMatch(t, []string{"r2", "r3"}, clusters[0].Members)
		assert.True(t, clusters[0].AntiTransitivitySplit)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	decisions := []model.PairDecision{
		dupDecision("r1", "r2", 0.9),
		dupDecision("r2", "r3", 0.9),
		reviewDecision("r1", "r3", 0.1),
	}
	c1 := Generate(decisions, 0.3)
	c2 := Generate(decisions, 0.3)
	assert.Equal(t, c1, c2)
}
