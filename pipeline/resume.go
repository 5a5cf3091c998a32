// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/refdedupe/dedupe/internal/errs"
	"github.com/refdedupe/dedupe/internal/model"
)

// The stage record types carry json:"-" on fields that ToMap renders by
// hand (Blockers, FieldScores), so resuming from a prior run's JSONL
// artifact needs small wire shims rather than a direct json.Unmarshal
// into the stage type.

func loadCanonicalRecords(path string) ([]model.CanonicalRecord, error) {
	var out []model.CanonicalRecord
	err := eachLine(path, func(line []byte) error {
		var r model.CanonicalRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return errs.IO(err, "decoding "+path)
		}
		out = append(out, r)
		return nil
	})
	return out, err
}

type pairWire struct {
	AID      string   `json:"a_id"`
	BID      string   `json:"b_id"`
	Blockers []string `json:"blockers"`
}

func (w pairWire) pair() model.CandidatePair {
	p := model.CandidatePair{AID: w.AID, BID: w.BID, Blockers: make(map[model.BlockerTag]bool, len(w.Blockers))}
	for _, b := range w.Blockers {
		p.Blockers[model.BlockerTag(b)] = true
	}
	return p
}

func loadCandidatePairs(path string) ([]model.CandidatePair, error) {
	var out []model.CandidatePair
	err := eachLine(path, func(line []byte) error {
		var w pairWire
		if err := json.Unmarshal(line, &w); err != nil {
			return errs.IO(err, "decoding "+path)
		}
		out = append(out, w.pair())
		return nil
	})
	return out, err
}

type scoredWire struct {
	pairWire
	FieldScores      map[string]float64 `json:"field_scores"`
	TotalScore       float64             `json:"total_score"`
	AgreementPattern uint32              `json:"agreement_pattern"`
}

func loadScoredPairs(path string) ([]model.ScoredPair, error) {
	var out []model.ScoredPair
	err := eachLine(path, func(line []byte) error {
		var w scoredWire
		if err := json.Unmarshal(line, &w); err != nil {
			return errs.IO(err, "decoding "+path)
		}
		fs := make(map[model.FieldName]float64, len(w.FieldScores))
		for k, v := range w.FieldScores {
			fs[model.FieldName(k)] = v
		}
		out = append(out, model.ScoredPair{
			CandidatePair:    w.pair(),
			FieldScores:      fs,
			TotalScore:       w.TotalScore,
			AgreementPattern: model.AgreementPattern(w.AgreementPattern),
		})
		return nil
	})
	return out, err
}

type decisionWire struct {
	scoredWire
	Decision      string  `json:"decision"`
	ThresholdLow  float64 `json:"threshold_low"`
	ThresholdHigh float64 `json:"threshold_high"`
	Reason        string  `json:"reason"`
}

func loadPairDecisions(path string) ([]model.PairDecision, error) {
	var out []model.PairDecision
	err := eachLine(path, func(line []byte) error {
		var w decisionWire
		if err := json.Unmarshal(line, &w); err != nil {
			return errs.IO(err, "decoding "+path)
		}
		fs := make(map[model.FieldName]float64, len(w.FieldScores))
		for k, v := range w.FieldScores {
			fs[model.FieldName(k)] = v
		}
		out = append(out, model.PairDecision{
			ScoredPair: model.ScoredPair{
				CandidatePair:    w.pair(),
				FieldScores:      fs,
				TotalScore:       w.TotalScore,
				AgreementPattern: model.AgreementPattern(w.AgreementPattern),
			},
			Decision:      model.Decision(w.Decision),
			ThresholdLow:  w.ThresholdLow,
			ThresholdHigh: w.ThresholdHigh,
			Reason:        w.Reason,
		})
		return nil
	})
	return out, err
}

type clusterEdgeWire struct {
	AID        string  `json:"a_id"`
	BID        string  `json:"b_id"`
	TotalScore float64 `json:"total_score"`
}

type clusterWire struct {
	ClusterID             string            `json:"cluster_id"`
	Members               []string          `json:"members"`
	Edges                 []clusterEdgeWire `json:"edges"`
	SurvivorID            string            `json:"survivor_id"`
	AntiTransitivitySplit bool              `json:"anti_transitivity_split"`
}

func loadClusters(path string) ([]model.Cluster, error) {
	var out []model.Cluster
	err := eachLine(path, func(line []byte) error {
		var w clusterWire
		if err := json.Unmarshal(line, &w); err != nil {
			return errs.IO(err, "decoding "+path)
		}
		edges := make([]model.PairDecision, len(w.Edges))
		for i, e := range w.Edges {
			edges[i] = model.PairDecision{
				ScoredPair: model.ScoredPair{
					CandidatePair: model.CandidatePair{AID: e.AID, BID: e.BID},
					TotalScore:    e.TotalScore,
				},
				Decision: model.AutoDup,
			}
		}
		out = append(out, model.Cluster{
			ClusterID:             w.ClusterID,
			Members:               w.Members,
			Edges:                 edges,
			SurvivorID:            w.SurvivorID,
			AntiTransitivitySplit: w.AntiTransitivitySplit,
		})
		return nil
	})
	return out, err
}

func eachLine(path string, fn func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.IO(err, "opening "+path)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	return sc.Err()
}
