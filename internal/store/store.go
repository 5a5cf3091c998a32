// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store persists pipeline stage artifacts in modernc.org/kv
// databases keyed by a deterministic byte comparator, exactly as the
// teacher's internal/store package orders BLAST hits by
// (strand, query, subject position, bitscore). Here the comparator orders
// candidate/scored pairs by (a_id, b_id), which is precisely the ordering
// guarantee §5 requires of every CandidatePair artifact — so iterating the
// store in key order already produces the sorted artifact, no separate
// sort pass needed.
package store

import (
	"bytes"
	"encoding/binary"
	"os"

	"modernc.org/kv"

	"github.com/refdedupe/dedupe/internal/errs"
)

// ByPairID is a kv compare function ordering keys by (a_id, b_id)
// lexicographic order, the pair ordering required by §5.
func ByPairID(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}
	xa, xb := unmarshalPairKey(x)
	ya, yb := unmarshalPairKey(y)
	if xa != ya {
		if xa < ya {
			return -1
		}
		return 1
	}
	if xb != yb {
		if xb < yb {
			return -1
		}
		return 1
	}
	return 0
}

// MarshalPairKey encodes (aID, bID) as a length-prefixed byte key so pair
// ids containing arbitrary bytes round-trip exactly.
func MarshalPairKey(aID, bID string) []byte {
	var buf bytes.Buffer
	writeString(&buf, aID)
	writeString(&buf, bID)
	return buf.Bytes()
}

func unmarshalPairKey(data []byte) (aID, bID string) {
	a, rest := readString(data)
	b, _ := readString(rest)
	return a, b
}

// ByRecordID orders keys by the lexicographic order of a single encoded
// id, used for stores keyed by record, cluster, or merged-record id rather
// than by pair.
func ByRecordID(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}
	xs, _ := readString(x)
	ys, _ := readString(y)
	switch {
	case xs < ys:
		return -1
	case xs > ys:
		return 1
	default:
		return 0
	}
}

// MarshalID encodes a single id as a length-prefixed key.
func MarshalID(id string) []byte {
	var buf bytes.Buffer
	writeString(&buf, id)
	return buf.Bytes()
}

var order = binary.BigEndian

func writeString(buf *bytes.Buffer, s string) {
	var b [8]byte
	order.PutUint64(b[:], uint64(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
}

func readString(data []byte) (s string, rest []byte) {
	n := order.Uint64(data[:8])
	data = data[8:]
	return string(data[:n]), data[n:]
}

// Compare is a kv byte comparator, either ByPairID or ByRecordID depending
// on the stage store's key shape.
type Compare func(x, y []byte) int

// Open creates (or truncates and recreates, for idempotent re-runs per §7)
// a kv database at path ordered by cmp.
func Open(path string, cmp Compare) (*kv.DB, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, errs.IO(err, "clearing stage store "+path)
	}
	opts := &kv.Options{Compare: cmp}
	db, err := kv.Create(path, opts)
	if err != nil {
		return nil, errs.IO(err, "creating stage store "+path)
	}
	return db, nil
}

// OpenExisting opens a previously created store for read-only inspection,
// as cmd/audit-refs-db does.
func OpenExisting(path string, cmp Compare) (*kv.DB, error) {
	opts := &kv.Options{Compare: cmp}
	db, err := kv.Open(path, opts)
	if err != nil {
		return nil, errs.IO(err, "opening stage store "+path)
	}
	return db, nil
}

// BatchWriter commits Set calls in fixed-size batches, mirroring the
// teacher's fragment.go merge loop (begin/commit every `batch` records,
// plus a final commit for the remainder).
type BatchWriter struct {
	db    *kv.DB
	batch int
	n     int
	inTx  bool
}

// NewBatchWriter returns a BatchWriter over db committing every batch Set
// calls.
func NewBatchWriter(db *kv.DB, batch int) *BatchWriter {
	if batch <= 0 {
		batch = 100
	}
	return &BatchWriter{db: db, batch: batch}
}

// Set writes key/value, opening a transaction if one is not already open.
func (w *BatchWriter) Set(key, value []byte) error {
	if !w.inTx {
		if err := w.db.BeginTransaction(); err != nil {
			return errs.IO(err, "beginning stage store transaction")
		}
		w.inTx = true
	}
	if err := w.db.Set(key, value); err != nil {
		return errs.IO(err, "writing stage store record")
	}
	w.n++
	if w.n%w.batch == 0 {
		if err := w.db.Commit(); err != nil {
			return errs.IO(err, "committing stage store transaction")
		}
		w.inTx = false
	}
	return nil
}

// Close commits any pending transaction.
func (w *BatchWriter) Close() error {
	if w.inTx {
		if err := w.db.Commit(); err != nil {
			return errs.IO(err, "committing final stage store transaction")
		}
		w.inTx = false
	}
	return nil
}
