// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ingest holds the format-specific tokenizers that turn a
// citation file into the uniform RawRecord stream the core pipeline
// consumes (§3). The core never opens a file itself; everything here is
// deliberately outside it, mirroring the teacher's split between
// cmd/ins's sequence/feature I/O (featio, seqio) and its format-agnostic
// BLAST result model.
package ingest

import (
	"fmt"
	"io"

	"github.com/refdedupe/dedupe/canon"
	"github.com/refdedupe/dedupe/internal/model"
)

// Parse tokenizes the contents of r, read from path, as format, returning
// one RawRecord per citation entry with its (path, byte_offset) source
// identifier set.
func Parse(r io.Reader, path string, format canon.Format) ([]model.RawRecord, error) {
	switch format {
	case canon.FormatRIS:
		return parseRIS(r, path)
	case canon.FormatNBIB:
		return parseNBIB(r, path)
	case canon.FormatCIW:
		return parseCIW(r, path)
	case canon.FormatENW:
		return parseENW(r, path)
	case canon.FormatBibTeX:
		return parseBibTeX(r, path)
	default:
		return nil, fmt.Errorf("ingest: unknown format %q", format)
	}
}
