// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"io"
	"strings"

	"github.com/refdedupe/dedupe/internal/model"
)

// parseCIW tokenizes a Web of Science tagged export: lines of the form
// "XX value" (2-letter tag, single space), one record per "ER" line.
func parseCIW(r io.Reader, path string) ([]model.RawRecord, error) {
	return scanTagValue(r, path, ciwSplit, ciwEnd)
}

func ciwSplit(line string) (tag, value string, ok bool) {
	if len(line) < 3 || line[2] != ' ' || line[0] == ' ' {
		return "", "", false
	}
	return line[:2], line[3:], true
}

func ciwEnd(line string) bool {
	t := strings.TrimRight(line, " \t\r")
	return t == "ER" || t == "EF"
}
