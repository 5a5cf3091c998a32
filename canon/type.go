// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package canon

import (
	"strings"

	"github.com/refdedupe/dedupe/internal/model"
)

// Format names one of the supported citation formats, used to select the
// right type-code table and author separator.
type Format string

const (
	FormatRIS     Format = "ris"
	FormatNBIB    Format = "nbib"
	FormatBibTeX  Format = "bibtex"
	FormatCIW     Format = "ciw"
	FormatENW     Format = "enw"
)

// risTypeTable maps RIS TY codes to CanonicalRecord.Type.
var risTypeTable = map[string]model.RecordType{
	"JOUR": model.TypeJournal,
	"CONF": model.TypeConference,
	"CPAPER": model.TypeConference,
	"BOOK": model.TypeBook,
	"CHAP": model.TypeChapter,
	"THES": model.TypeThesis,
	"UNPB": model.TypePreprint,
}

// nbibTypeTable maps PubMed NBIB publication-type strings.
var nbibTypeTable = map[string]model.RecordType{
	"journal article": model.TypeJournal,
	"comparative study": model.TypeJournal,
	"review": model.TypeJournal,
	"conference paper": model.TypeConference,
	"book": model.TypeBook,
}

// bibtexTypeTable maps BibTeX entry types.
var bibtexTypeTable = map[string]model.RecordType{
	"article": model.TypeJournal,
	"inproceedings": model.TypeConference,
	"conference": model.TypeConference,
	"book": model.TypeBook,
	"inbook": model.TypeChapter,
	"incollection": model.TypeChapter,
	"phdthesis": model.TypeThesis,
	"mastersthesis": model.TypeThesis,
	"unpublished": model.TypePreprint,
	"misc": model.TypeOther,
}

// ciwTypeTable maps Web of Science PT codes.
var ciwTypeTable = map[string]model.RecordType{
	"J": model.TypeJournal,
	"B": model.TypeBook,
	"S": model.TypeBook,
	"C": model.TypeConference,
}

// enwTypeTable maps EndNote reference types.
var enwTypeTable = map[string]model.RecordType{
	"journal article": model.TypeJournal,
	"conference proceedings": model.TypeConference,
	"book": model.TypeBook,
	"book section": model.TypeChapter,
	"thesis": model.TypeThesis,
}

// NormalizeType maps a format-specific type code to a CanonicalRecord.Type
// via the fixed table for fmt; unknown codes become model.TypeOther, never
// a rejected record (§4.1).
func NormalizeType(fmt Format, code string) model.RecordType {
	key := strings.ToLower(strings.TrimSpace(code))
	var table map[string]model.RecordType
	switch fmt {
	case FormatRIS:
		return lookupRIS(code)
	case FormatNBIB:
		table = nbibTypeTable
	case FormatBibTeX:
		table = bibtexTypeTable
	case FormatCIW:
		return lookupCIW(code)
	case FormatENW:
		table = enwTypeTable
	default:
		return model.TypeOther
	}
	if t, ok := table[key]; ok {
		return t
	}
	return model.TypeOther
}

func lookupRIS(code string) model.RecordType {
	if t, ok := risTypeTable[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return t
	}
	return model.TypeOther
}

func lookupCIW(code string) model.RecordType {
	if t, ok := ciwTypeTable[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return t
	}
	return model.TypeOther
}
