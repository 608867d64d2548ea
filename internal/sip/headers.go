package sip

import "firestige.xyz/strix/internal/buffer"

// RawHeader is one wire occurrence of a header: name and de-folded
// value ranges plus the occurrence index among headers with the same
// canonical name (0 = top-most).
type RawHeader struct {
	Name       buffer.View
	Value      buffer.View
	Occurrence int
}

// compactForms maps RFC 3261 compact header names to their canonical
// long form. Lookup and indexing both normalize through this table, so
// header("v") and header("Via") are the same query.
var compactForms = map[string]string{
	"f": "from",
	"t": "to",
	"v": "via",
	"m": "contact",
	"i": "call-id",
	"k": "supported",
	"l": "content-length",
	"c": "content-type",
}

// canonicalName lowercases an ASCII header name and expands compact
// forms.
func canonicalName(name string) string {
	lower := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		lower[i] = b
	}
	s := string(lower)
	if long, ok := compactForms[s]; ok {
		return long
	}
	return s
}

// headerIndex maps canonical header names to their wire-ordered
// occurrences. Built once per message, immutable afterwards; concurrent
// reads are safe without locking.
type headerIndex struct {
	byName map[string][]RawHeader
}

// buildHeaderIndex scans the header block and indexes every well-formed
// logical line. Malformed lines (no colon) are skipped — their absence
// is observable later through the sanity checker, never as an indexing
// failure.
func buildHeaderIndex(block buffer.View) *headerIndex {
	ix := &headerIndex{byName: make(map[string][]RawHeader)}
	scanner := newLineScanner(block)
	for {
		hl, ok := scanner.next()
		if !ok {
			break
		}
		if hl.err != nil {
			continue
		}
		key := canonicalName(hl.name.String())
		occ := ix.byName[key]
		ix.byName[key] = append(occ, RawHeader{
			Name:       hl.name,
			Value:      hl.value,
			Occurrence: len(occ),
		})
	}
	return ix
}

// get returns all occurrences of name in wire order. The slice is nil
// when the header is absent and never empty otherwise.
func (ix *headerIndex) get(name string) []RawHeader {
	return ix.byName[canonicalName(name)]
}

// top returns the top-most occurrence of name.
func (ix *headerIndex) top(name string) (RawHeader, bool) {
	occ := ix.get(name)
	if len(occ) == 0 {
		return RawHeader{}, false
	}
	return occ[0], true
}
