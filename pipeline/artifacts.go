// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pipeline

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/refdedupe/dedupe/internal/errs"
	"github.com/refdedupe/dedupe/internal/store"
)

// toMapper is implemented by every stage's output record type, letting
// encoding/json's alphabetical map-key sort satisfy §6's sorted-keys JSONL
// requirement without a bespoke encoder.
type toMapper interface {
	ToMap() map[string]interface{}
}

// keyedItem pairs a stage record with the stage store key it is persisted
// under.
type keyedItem struct {
	key   []byte
	value toMapper
}

// persistStage writes items to a kv store at path under cmp's ordering,
// mirroring the teacher's fragment.go batch-commit loop, then dumps the
// store back out as a sorted JSONL artifact at jsonlPath. Persisting
// through the kv store (rather than sorting the in-memory slice directly)
// is what lets --from-stage resume reopen a prior run's intermediate
// state without recomputing it.
func persistStage(dbPath, jsonlPath string, items []keyedItem, cmp store.Compare) error {
	db, err := store.Open(dbPath, cmp)
	if err != nil {
		return err
	}
	w := store.NewBatchWriter(db, 200)
	for _, it := range items {
		b, err := json.Marshal(it.value.ToMap())
		if err != nil {
			return errs.IO(err, "marshaling stage record")
		}
		if err := w.Set(it.key, b); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return errs.IO(err, "closing stage store "+dbPath)
	}
	return dumpJSONL(dbPath, jsonlPath, cmp)
}

// dumpJSONL iterates a stage store in key order and writes one JSON value
// per line, which is already byte-deterministic because the store's
// comparator defines the same ordering §5 requires of the artifact.
func dumpJSONL(dbPath, jsonlPath string, cmp store.Compare) error {
	db, err := store.OpenExisting(dbPath, cmp)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := os.MkdirAll(filepath.Dir(jsonlPath), 0o755); err != nil {
		return errs.IO(err, "creating artifact directory")
	}
	f, err := os.Create(jsonlPath)
	if err != nil {
		return errs.IO(err, "creating artifact "+jsonlPath)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	it, err := db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return bw.Flush()
		}
		return errs.IO(err, "seeking stage store "+dbPath)
	}
	for {
		_, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return errs.IO(err, "reading stage store "+dbPath)
		}
		if _, err := bw.Write(v); err != nil {
			return errs.IO(err, "writing artifact "+jsonlPath)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return errs.IO(err, "writing artifact "+jsonlPath)
		}
	}
	return bw.Flush()
}

// writeJSON marshals v with indentation and writes it to path, used for
// summary.json, run_manifest.json, and blocker_coverage.json.
func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.IO(err, "creating artifact directory")
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.IO(err, "marshaling "+path)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errs.IO(err, "writing "+path)
	}
	return nil
}
