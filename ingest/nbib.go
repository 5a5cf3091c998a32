// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"io"
	"strings"

	"github.com/refdedupe/dedupe/internal/model"
)

// parseNBIB tokenizes a PubMed/MEDLINE flat file: lines of the form
// "XXXX- value" (tag left-justified in 4 columns), records separated by a
// blank line.
func parseNBIB(r io.Reader, path string) ([]model.RawRecord, error) {
	return scanTagValue(r, path, nbibSplit, nbibEnd)
}

func nbibSplit(line string) (tag, value string, ok bool) {
	if len(line) < 6 || line[4:6] != "- " {
		return "", "", false
	}
	return strings.TrimSpace(line[:4]), line[6:], true
}

func nbibEnd(line string) bool {
	return strings.TrimSpace(line) == ""
}
