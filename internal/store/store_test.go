// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByRecordIDOrdersLexicographically(t *testing.T) {
	assert.Equal(t, -1, ByRecordID(MarshalID("a"), MarshalID("b")))
	assert.Equal(t, 1, ByRecordID(MarshalID("b"), MarshalID("a")))
	assert.Equal(t, 0, ByRecordID(MarshalID("a"), MarshalID("a")))
}

func TestByPairIDOrdersByAThenB(t *testing.T) {
	assert.Equal(t, -1, ByPairID(MarshalPairKey("a", "z"), MarshalPairKey("b", "a")))
	assert.Equal(t, -1, ByPairID(MarshalPairKey("a", "a"), MarshalPairKey("a", "b")))
	assert.Equal(t, 0, ByPairID(MarshalPairKey("a", "b"), MarshalPairKey("a", "b")))
}

func TestOpenAndBatchWriterRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Open(path, ByRecordID)
	require.NoError(t, err)

	w := NewBatchWriter(db, 2)
	require.NoError(t, w.Set(MarshalID("b"), []byte("second")))
	require.NoError(t, w.Set(MarshalID("a"), []byte("first")))
	require.NoError(t, w.Set(MarshalID("c"), []byte("third")))
	require.NoError(t, w.Close())
	require.NoError(t, db.Close())

	db2, err := OpenExisting(path, ByRecordID)
	require.NoError(t, err)
	defer db2.Close()

	it, err := db2.SeekFirst()
	require.NoError(t, err)

	var values []string
	for {
		_, v, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		values = append(values, string(v))
	}
	assert.Equal(t, []string{"first", "second", "third"}, values, "iteration must follow key order, not insertion order")
}

func TestOpenTruncatesExistingStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	db, err := Open(path, ByRecordID)
	require.NoError(t, err)
	w := NewBatchWriter(db, 1)
	require.NoError(t, w.Set(MarshalID("stale"), []byte("old")))
	require.NoError(t, w.Close())
	require.NoError(t, db.Close())

	db2, err := Open(path, ByRecordID)
	require.NoError(t, err)
	defer db2.Close()

	_, err = db2.SeekFirst()
	assert.Equal(t, io.EOF, err, "re-opening with Open must discard the prior store's contents")
}
