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

// parseBibTeX tokenizes a BibTeX file. Unlike RIS/NBIB/CIW/ENW, entries are
// brace-delimited ("@type{key, field = {value}, ...}") rather than
// line-oriented, so it does not share scanTagValue's tokenizer.
func parseBibTeX(r io.Reader, path string) ([]model.RawRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []model.RawRecord
	var offset, recStart int64
	var buf strings.Builder
	depth := 0
	inEntry := false

	flush := func() {
		if !inEntry {
			return
		}
		entryType, fields := parseBibEntry(buf.String())
		if entryType != "" {
			all := append([]model.RawField{{Tag: "ENTRYTYPE", Value: entryType}}, fields...)
			records = append(records, model.RawRecord{
				ID:     fmt.Sprintf("%s@%d", path, recStart),
				Fields: all,
				Source: model.SourceID{FilePath: path, ByteOffset: recStart},
			})
		}
		buf.Reset()
		inEntry = false
		depth = 0
	}

	for sc.Scan() {
		line := sc.Text()
		lineLen := int64(len(sc.Bytes())) + 1
		trimmed := strings.TrimSpace(line)
		if !inEntry {
			if strings.HasPrefix(trimmed, "@") {
				flush()
				inEntry = true
				recStart = offset
			}
		}
		if inEntry {
			buf.WriteString(line)
			buf.WriteByte('\n')
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			if depth <= 0 {
				flush()
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

// parseBibEntry splits a single "@type{key, field = {value}, ...}" block
// into its entry type and its field tag/value pairs. The citation key
// itself is discarded; canon derives the record id from the source
// identifier (path and byte offset) set by parseBibTeX.
func parseBibEntry(entry string) (entryType string, fields []model.RawField) {
	entry = strings.TrimSpace(entry)
	open := strings.IndexByte(entry, '{')
	if open < 0 || !strings.HasPrefix(entry, "@") {
		return "", nil
	}
	entryType = strings.ToLower(strings.TrimSpace(entry[1:open]))
	body := entry[open+1:]
	if i := strings.LastIndexByte(body, '}'); i >= 0 {
		body = body[:i]
	}
	if i := strings.IndexByte(body, ','); i >= 0 {
		body = body[i+1:]
	}

	for len(body) > 0 {
		eq := indexUnbraced(body, '=')
		if eq < 0 {
			break
		}
		tag := strings.ToLower(strings.TrimSpace(strings.TrimRight(body[:eq], ",")))
		rest := strings.TrimSpace(body[eq+1:])

		var value string
		switch {
		case strings.HasPrefix(rest, "{"):
			end := matchBrace(rest)
			value = rest[1:end]
			rest = rest[end+1:]
		case strings.HasPrefix(rest, `"`):
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				end = len(rest) - 1
			} else {
				end++
			}
			value = rest[1:end]
			rest = rest[end+1:]
		default:
			end := indexUnbraced(rest, ',')
			if end < 0 {
				end = len(rest)
			}
			value = strings.TrimSpace(rest[:end])
			rest = rest[end:]
		}

		if tag != "" {
			fields = append(fields, model.RawField{
				Tag:   model.Tag(tag),
				Value: strings.Join(strings.Fields(value), " "),
			})
		}

		comma := strings.IndexByte(rest, ',')
		if comma < 0 {
			break
		}
		body = rest[comma+1:]
	}
	return entryType, fields
}

// indexUnbraced returns the index of the first occurrence of b in s that
// is not nested inside a brace pair, or -1.
func indexUnbraced(s string, b byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case b:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchBrace returns the index of the '}' matching the '{' at s[0].
func matchBrace(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s) - 1
}
