// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/refdedupe/dedupe/internal/model"
)

// scanTagValue is the shared line-oriented tokenizer behind RIS, NBIB, CIW,
// and ENW, which all share the same tag/value-per-line shape and differ
// only in tag width, separator, and record-break convention. split
// recognizes a field line and returns its tag and value; endOfRecord
// recognizes a line that terminates the current record (a blank line or an
// explicit end marker, depending on format).
func scanTagValue(r io.Reader, path string, split func(string) (tag, value string, ok bool), endOfRecord func(string) bool) ([]model.RawRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []model.RawRecord
	var cur []model.RawField
	var offset, recStart int64

	flush := func() {
		if len(cur) == 0 {
			return
		}
		records = append(records, model.RawRecord{
			ID:     fmt.Sprintf("%s@%d", path, recStart),
			Fields: cur,
			Source: model.SourceID{FilePath: path, ByteOffset: recStart},
		})
		cur = nil
	}

	for sc.Scan() {
		line := sc.Text()
		lineLen := int64(len(sc.Bytes())) + 1
		if len(cur) == 0 {
			recStart = offset
		}
		switch {
		case endOfRecord(line):
			flush()
		default:
			if tag, value, ok := split(line); ok {
				cur = append(cur, model.RawField{Tag: model.Tag(tag), Value: value})
			} else if len(cur) > 0 && strings.TrimSpace(line) != "" {
				last := &cur[len(cur)-1]
				last.Value = strings.TrimSpace(last.Value + " " + strings.TrimSpace(line))
			}
		}
		offset += lineLen
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return records, nil
}
