// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"io"
	"strings"

	"github.com/refdedupe/dedupe/internal/model"
)

// parseRIS tokenizes a RIS file: lines of the form "XX  - value", one
// record per "ER  - " terminator.
func parseRIS(r io.Reader, path string) ([]model.RawRecord, error) {
	return scanTagValue(r, path, risSplit, risEnd)
}

func risSplit(line string) (tag, value string, ok bool) {
	if len(line) < 6 || line[2:6] != "  - " {
		return "", "", false
	}
	return line[:2], line[6:], true
}

func risEnd(line string) bool {
	tag, _, ok := risSplit(line)
	return ok && strings.EqualFold(tag, "ER")
}
