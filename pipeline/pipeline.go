// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pipeline orchestrates the six dedup stages (normalize, block,
// score, decide, cluster, merge), persisting each stage's output as a
// sorted JSONL artifact under the configured output directory and
// supporting resumption from any later stage when the configuration
// hasn't drifted since the artifact was written.
package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/refdedupe/dedupe/block"
	"github.com/refdedupe/dedupe/canon"
	"github.com/refdedupe/dedupe/cluster"
	"github.com/refdedupe/dedupe/decide"
	"github.com/refdedupe/dedupe/internal/calib"
	"github.com/refdedupe/dedupe/internal/config"
	"github.com/refdedupe/dedupe/internal/errs"
	"github.com/refdedupe/dedupe/internal/model"
	"github.com/refdedupe/dedupe/internal/store"
	"github.com/refdedupe/dedupe/merge"
	"github.com/refdedupe/dedupe/score"
)

// Stage names one of the six ordered pipeline stages.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageBlock     Stage = "block"
	StageScore     Stage = "score"
	StageDecide    Stage = "decide"
	StageCluster   Stage = "cluster"
	StageMerge     Stage = "merge"
)

var stageOrder = []Stage{StageNormalize, StageBlock, StageScore, StageDecide, StageCluster, StageMerge}

func stageIndex(s Stage) int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Input is a raw citation record paired with the format it was parsed
// from; a single run may mix formats.
type Input struct {
	Record model.RawRecord
	Format canon.Format
}

// Result summarizes a completed run, written to summary.json (§6).
type Result struct {
	InputRecords           int     `json:"input_records"`
	NormalizedRecords      int     `json:"normalized_records"`
	RejectedRecords        int     `json:"rejected_records"`
	CandidatePairs         int     `json:"candidate_pairs"`
	ScoredPairs            int     `json:"scored_pairs"`
	AutoDup                int     `json:"auto_dup"`
	Review                 int     `json:"review"`
	AutoKeep               int     `json:"auto_keep"`
	Clusters               int     `json:"clusters"`
	AntiTransitivitySplits int     `json:"anti_transitivity_splits"`
	MergedRecords          int     `json:"merged_records"`
	ThresholdLow           float64 `json:"threshold_low"`
	ThresholdHigh          float64 `json:"threshold_high"`
	ConfigHash             string  `json:"config_hash"`
}

// Pipeline runs the stages against a loaded configuration and calibration
// table.
type Pipeline struct {
	Config    config.Config
	Calib     calib.Table
	Log       zerolog.Logger
	FromStage Stage // zero value runs every stage from the start
	ToStage   Stage // zero value runs every stage through StageMerge

	// DotPrefix, when non-empty, enables the optional cluster DOT export
	// (cmd/dedupe cluster --dot <prefix>) and names its file prefix;
	// zero value skips the export entirely.
	DotPrefix string
}

// reachedToStage reports whether stage is p.ToStage, the point at which a
// single-stage CLI subcommand should stop rather than continue the full
// pipeline. It is always false when p.ToStage is unset, so the run
// continues through StageMerge.
func (p Pipeline) reachedToStage(stage Stage) bool {
	return p.ToStage != "" && p.ToStage == stage
}

func (p Pipeline) outputPath(elem ...string) string {
	return filepath.Join(append([]string{p.Config.OutputDir}, elem...)...)
}

// Run executes every stage from p.FromStage (or StageNormalize when
// unset) through p.ToStage (or StageMerge when unset).
func (p Pipeline) Run(ctx context.Context, inputs []Input, now time.Time) (Result, error) {
	from := p.FromStage
	if from == "" {
		from = StageNormalize
	}
	fromIdx := stageIndex(from)
	if fromIdx < 0 {
		return Result{}, errs.Configuration("unknown stage %q", from)
	}

	// Thresholds are resolved before any artifact is written, so a
	// threshold configuration error aborts the run without partial output.
	tLow, tHigh, err := decide.Thresholds(p.Config.TLow, p.Config.THigh, p.Config.FPRAlpha, p.Calib)
	if err != nil {
		return Result{}, err
	}

	if fromIdx > 0 {
		if err := p.checkResumeHash(); err != nil {
			return Result{}, err
		}
	} else {
		if err := p.writeConfigHash(); err != nil {
			return Result{}, err
		}
	}

	var (
		records   []model.CanonicalRecord
		rejected  int
		candPairs []model.CandidatePair
		coverage  map[model.BlockerTag]*block.Coverage
		scored    []model.ScoredPair
		decisions []model.PairDecision
		clusters  []model.Cluster
	)

	if fromIdx <= stageIndex(StageNormalize) {
		if err := ctxDone(ctx); err != nil {
			return Result{}, err
		}
		records, rejected = p.runNormalize(inputs, now)
		if err := p.persistRecords(records); err != nil {
			return Result{}, err
		}
	} else {
		var err error
		records, err = loadCanonicalRecords(p.outputPath("stage1", "canonical_records.jsonl"))
		if err != nil {
			return Result{}, err
		}
	}
	if p.reachedToStage(StageNormalize) {
		return p.finish(p.summarize(inputs, rejected, records, nil, nil, nil, nil, nil, 0, 0))
	}
	recordsByID := indexRecords(records)

	if fromIdx <= stageIndex(StageBlock) {
		if err := ctxDone(ctx); err != nil {
			return Result{}, err
		}
		blockers, err := p.Config.Blockers()
		if err != nil {
			return Result{}, err
		}
		result := block.Generate(records, blockers, p.Config.LSHParams, p.Config.MaxPairsPerRecord)
		candPairs, coverage = result.Pairs, result.Coverage
		if err := p.persistCandidatePairs(candPairs); err != nil {
			return Result{}, err
		}
		if err := p.writeCoverage(coverage); err != nil {
			return Result{}, err
		}
	} else {
		var err error
		candPairs, err = loadCandidatePairs(p.outputPath("stage2", "candidate_pairs.jsonl"))
		if err != nil {
			return Result{}, err
		}
	}
	if p.reachedToStage(StageBlock) {
		return p.finish(p.summarize(inputs, rejected, records, candPairs, nil, nil, nil, nil, 0, 0))
	}

	if fromIdx <= stageIndex(StageScore) {
		if err := ctxDone(ctx); err != nil {
			return Result{}, err
		}
		var err error
		scored, err = p.runScore(candPairs, recordsByID)
		if err != nil {
			return Result{}, err
		}
		if err := p.persistScoredPairs(scored); err != nil {
			return Result{}, err
		}
	} else {
		var err error
		scored, err = loadScoredPairs(p.outputPath("stage3", "scored_pairs.jsonl"))
		if err != nil {
			return Result{}, err
		}
	}
	if p.reachedToStage(StageScore) {
		return p.finish(p.summarize(inputs, rejected, records, candPairs, scored, nil, nil, nil, 0, 0))
	}

	if fromIdx <= stageIndex(StageDecide) {
		if err := ctxDone(ctx); err != nil {
			return Result{}, err
		}
		decisions, err = decide.DecideAll(scored, recordsByID, tLow, tHigh)
		if err != nil {
			return Result{}, err
		}
		if err := p.persistDecisions(decisions); err != nil {
			return Result{}, err
		}
	} else {
		decisions, err = loadPairDecisions(p.outputPath("stage4", "pair_decisions.jsonl"))
		if err != nil {
			return Result{}, err
		}
	}
	if p.reachedToStage(StageDecide) {
		return p.finish(p.summarize(inputs, rejected, records, candPairs, scored, decisions, nil, nil, tLow, tHigh))
	}

	if fromIdx <= stageIndex(StageCluster) {
		if err := ctxDone(ctx); err != nil {
			return Result{}, err
		}
		clusters = cluster.Generate(decisions, tLow)
		if err := p.persistClusters(clusters); err != nil {
			return Result{}, err
		}
		if p.DotPrefix != "" {
			if err := p.writeClusterDOT(decisions); err != nil {
				return Result{}, err
			}
		}
	} else {
		clusters, err = loadClusters(p.outputPath("stage5", "clusters.jsonl"))
		if err != nil {
			return Result{}, err
		}
	}
	if p.reachedToStage(StageCluster) {
		return p.finish(p.summarize(inputs, rejected, records, candPairs, scored, decisions, clusters, nil, tLow, tHigh))
	}

	if err := ctxDone(ctx); err != nil {
		return Result{}, err
	}
	mergedRecords := make([]model.MergedRecord, 0, len(clusters))
	for i := range clusters {
		mr := merge.Resolve(clusters[i], recordsByID)
		clusters[i].SurvivorID = mr.ID
		mergedRecords = append(mergedRecords, mr)
	}
	sort.Slice(mergedRecords, func(i, j int) bool { return mergedRecords[i].ID < mergedRecords[j].ID })
	if err := p.persistMergedRecords(mergedRecords); err != nil {
		return Result{}, err
	}
	if err := p.persistClusters(clusters); err != nil {
		return Result{}, err
	}
	if err := p.persistClustersEnriched(clusters, mergedRecords); err != nil {
		return Result{}, err
	}

	return p.finish(p.summarize(inputs, rejected, records, candPairs, scored, decisions, clusters, mergedRecords, tLow, tHigh))
}

// finish writes the run's summary.json artifact and returns result.
func (p Pipeline) finish(result Result) (Result, error) {
	if err := writeJSON(p.outputPath("summary.json"), result); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (p Pipeline) runNormalize(inputs []Input, now time.Time) ([]model.CanonicalRecord, int) {
	records := make([]model.CanonicalRecord, 0, len(inputs))
	rejected := 0
	for _, in := range inputs {
		r, err := canon.Normalize(in.Record, in.Format, now)
		if err != nil {
			p.Log.Warn().Err(err).Str("raw_id", in.Record.ID).Msg("rejecting record")
			rejected++
			continue
		}
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, rejected
}

func (p Pipeline) runScore(pairs []model.CandidatePair, recordsByID map[string]model.CanonicalRecord) ([]model.ScoredPair, error) {
	out := make([]model.ScoredPair, 0, len(pairs))
	for _, cp := range pairs {
		a, ok := recordsByID[cp.AID]
		if !ok {
			return nil, errs.Input("score: unknown record id %s", cp.AID)
		}
		b, ok := recordsByID[cp.BID]
		if !ok {
			return nil, errs.Input("score: unknown record id %s", cp.BID)
		}
		total, fs, pattern := score.Score(a, b, p.Calib, p.Config.MissingWeight)
		out = append(out, model.ScoredPair{
			CandidatePair:    cp,
			FieldScores:      fs,
			TotalScore:       total,
			AgreementPattern: pattern,
		})
	}
	return out, nil
}

func (p Pipeline) summarize(inputs []Input, rejected int, records []model.CanonicalRecord, pairs []model.CandidatePair, scored []model.ScoredPair, decisions []model.PairDecision, clusters []model.Cluster, merged []model.MergedRecord, tLow, tHigh float64) Result {
	var dup, review, keep, splits int
	for _, d := range decisions {
		switch d.Decision {
		case model.AutoDup:
			dup++
		case model.Review:
			review++
		case model.AutoKeep:
			keep++
		}
	}
	for _, c := range clusters {
		if c.AntiTransitivitySplit {
			splits++
		}
	}
	return Result{
		InputRecords:           len(inputs),
		NormalizedRecords:      len(records),
		RejectedRecords:        rejected,
		CandidatePairs:         len(pairs),
		ScoredPairs:            len(scored),
		AutoDup:                dup,
		Review:                 review,
		AutoKeep:               keep,
		Clusters:               len(clusters),
		AntiTransitivitySplits: splits,
		MergedRecords:          len(merged),
		ThresholdLow:           tLow,
		ThresholdHigh:          tHigh,
		ConfigHash:             p.Config.Hash(),
	}
}

func indexRecords(records []model.CanonicalRecord) map[string]model.CanonicalRecord {
	m := make(map[string]model.CanonicalRecord, len(records))
	for _, r := range records {
		m[r.ID] = r
	}
	return m
}

func ctxDone(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// runManifest is the run_manifest.json artifact (SPEC_FULL.md "Idempotent
// resumability"): the configuration fingerprint a later --from-stage run
// must match before it may reuse this run's intermediate artifacts.
type runManifest struct {
	ConfigHash string `json:"config_hash"`
}

func (p Pipeline) manifestPath() string { return p.outputPath("artifacts", "run_manifest.json") }

func (p Pipeline) writeConfigHash() error {
	return writeJSON(p.manifestPath(), runManifest{ConfigHash: p.Config.Hash()})
}

// checkResumeHash implements idempotent resumability: --from-stage refuses
// to reuse a prior run's intermediate artifacts once the configuration has
// drifted, since every later stage's correctness depends on the earlier
// stages having run with the same parameters.
func (p Pipeline) checkResumeHash() error {
	b, err := os.ReadFile(p.manifestPath())
	if err != nil {
		return errs.Configuration("cannot resume: no prior run manifest found in %s: %v", p.Config.OutputDir, err)
	}
	var m runManifest
	if err := json.Unmarshal(b, &m); err != nil {
		return errs.Configuration("cannot resume: malformed run manifest in %s: %v", p.Config.OutputDir, err)
	}
	if m.ConfigHash != p.Config.Hash() {
		return errs.Configuration("cannot resume: configuration has changed since the prior run in %s", p.Config.OutputDir)
	}
	return nil
}

func (p Pipeline) persistRecords(records []model.CanonicalRecord) error {
	items := make([]keyedItem, len(records))
	for i, r := range records {
		items[i] = keyedItem{key: store.MarshalID(r.ID), value: r}
	}
	return persistStage(p.outputPath("normalized_records.db"), p.outputPath("stage1", "canonical_records.jsonl"), items, store.ByRecordID)
}

func (p Pipeline) persistCandidatePairs(pairs []model.CandidatePair) error {
	items := make([]keyedItem, len(pairs))
	for i, cp := range pairs {
		items[i] = keyedItem{key: store.MarshalPairKey(cp.AID, cp.BID), value: cp}
	}
	return persistStage(p.outputPath("candidates.db"), p.outputPath("stage2", "candidate_pairs.jsonl"), items, store.ByPairID)
}

func (p Pipeline) persistScoredPairs(pairs []model.ScoredPair) error {
	items := make([]keyedItem, len(pairs))
	for i, sp := range pairs {
		items[i] = keyedItem{key: store.MarshalPairKey(sp.AID, sp.BID), value: sp}
	}
	return persistStage(p.outputPath("scored.db"), p.outputPath("stage3", "scored_pairs.jsonl"), items, store.ByPairID)
}

func (p Pipeline) persistDecisions(decisions []model.PairDecision) error {
	items := make([]keyedItem, len(decisions))
	for i, d := range decisions {
		items[i] = keyedItem{key: store.MarshalPairKey(d.AID, d.BID), value: d}
	}
	return persistStage(p.outputPath("decisions.db"), p.outputPath("stage4", "pair_decisions.jsonl"), items, store.ByPairID)
}

func (p Pipeline) persistClusters(clusters []model.Cluster) error {
	items := make([]keyedItem, len(clusters))
	for i, c := range clusters {
		items[i] = keyedItem{key: store.MarshalID(c.ClusterID), value: c}
	}
	return persistStage(p.outputPath("clusters.db"), p.outputPath("stage5", "clusters.jsonl"), items, store.ByRecordID)
}

func (p Pipeline) persistMergedRecords(merged []model.MergedRecord) error {
	items := make([]keyedItem, len(merged))
	for i, m := range merged {
		items[i] = keyedItem{key: store.MarshalID(m.ID), value: m}
	}
	return persistStage(p.outputPath("merged.db"), p.outputPath("artifacts", "merged_records.jsonl"), items, store.ByRecordID)
}

// persistClustersEnriched writes artifacts/clusters_enriched.jsonl (§6): each
// cluster joined with its merged survivor record, so a downstream consumer
// doesn't need to cross-reference stage5/clusters.jsonl against
// artifacts/merged_records.jsonl by hand. clusters is already sorted by
// min(member_id) from the cluster stage, so no re-sort is needed here.
func (p Pipeline) persistClustersEnriched(clusters []model.Cluster, merged []model.MergedRecord) error {
	mergedByCluster := make(map[string]model.MergedRecord, len(merged))
	for _, m := range merged {
		mergedByCluster[m.ClusterID] = m
	}

	path := p.outputPath("artifacts", "clusters_enriched.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.IO(err, "creating artifact directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.IO(err, "creating artifact "+path)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, c := range clusters {
		out := c.ToMap()
		if mr, ok := mergedByCluster[c.ClusterID]; ok {
			out["merged_record"] = mr.ToMap()
		}
		b, err := json.Marshal(out)
		if err != nil {
			return errs.IO(err, "marshaling clusters_enriched record")
		}
		if _, err := bw.Write(b); err != nil {
			return errs.IO(err, "writing artifact "+path)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errs.IO(err, "writing artifact "+path)
		}
	}
	return bw.Flush()
}

func (p Pipeline) writeCoverage(coverage map[model.BlockerTag]*block.Coverage) error {
	out := make(map[string]map[string]interface{}, len(coverage))
	for _, tag := range model.AllBlockers {
		c, ok := coverage[tag]
		if !ok {
			continue
		}
		out[string(tag)] = map[string]interface{}{
			"pairs_emitted":   c.PairsEmitted,
			"records_covered": len(c.RecordsCovered),
			"skipped_records": c.SkippedRecords,
		}
	}
	return writeJSON(p.outputPath("artifacts", "blocker_coverage.json"), out)
}

func (p Pipeline) writeClusterDOT(decisions []model.PairDecision) error {
	b, err := cluster.ExportDOT(decisions)
	if err != nil {
		return errs.IO(err, "rendering cluster graph")
	}
	path := p.DotPrefix + ".dot"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.IO(err, "creating artifact directory")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errs.IO(err, "writing "+path)
	}
	return nil
}
