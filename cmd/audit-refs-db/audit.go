// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The audit-refs-db command allows the internal kv stores left behind by
// a dedupe run to be queried directly. There are six, one per stage:
//  - normalized_records.db — canonicalized records, keyed by record id
//  - candidates.db         — candidate pairs from blocking, keyed by (a_id, b_id)
//  - scored.db             — scored pairs, keyed by (a_id, b_id)
//  - decisions.db          — pair decisions, keyed by (a_id, b_id)
//  - clusters.db           — clusters, keyed by cluster id
//  - merged.db             — merged survivor records, keyed by record id
// These live in the pipeline's configured output directory and persist
// after a run completes. Output from audit-refs-db is a JSON stream on
// stdout, one value per line.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/refdedupe/dedupe/internal/store"
)

var cmpFor = map[string]store.Compare{
	"normalized_records.db": store.ByRecordID,
	"candidates.db":          store.ByPairID,
	"scored.db":              store.ByPairID,
	"decisions.db":           store.ByPairID,
	"clusters.db":            store.ByRecordID,
	"merged.db":              store.ByRecordID,
}

func main() {
	path := flag.String("db", "", "specify db file to audit (base must match one of the stage store names)")
	flag.Parse()
	base := filepath.Base(*path)
	cmp, ok := cmpFor[base]
	if !ok {
		flag.Usage()
		os.Exit(2)
	}

	db, err := store.OpenExisting(*path, cmp)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	it, err := db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return
		}
		log.Fatal(err)
	}
	for {
		_, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			log.Fatal(err)
		}
		os.Stdout.Write(v)
		fmt.Println()
	}
}
