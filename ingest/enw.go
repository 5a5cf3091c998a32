// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"io"
	"strings"

	"github.com/refdedupe/dedupe/internal/model"
)

// parseENW tokenizes an EndNote export: lines of the form "%X value" (a
// single letter tag prefixed with '%'), records separated by a blank line.
func parseENW(r io.Reader, path string) ([]model.RawRecord, error) {
	return scanTagValue(r, path, enwSplit, enwEnd)
}

func enwSplit(line string) (tag, value string, ok bool) {
	if len(line) < 3 || line[0] != '%' || line[2] != ' ' {
		return "", "", false
	}
	return line[1:2], line[3:], true
}

func enwEnd(line string) bool {
	return strings.TrimSpace(line) == ""
}
