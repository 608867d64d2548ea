package sip

import "firestige.xyz/strix/internal/buffer"

// headerLine is one logical header line: the name and value ranges of
// a physical line plus any folded continuation lines. err is non-nil
// (a *MalformedHeaderError) when the line carries no colon; such lines
// are skipped by the index build.
type headerLine struct {
	name  buffer.View
	value buffer.View
	line  int // 1-based physical line number of the logical line start
	err   error
}

// lineScanner walks the header block yielding logical header lines.
// Folding: a physical line starting with SP or HT continues the
// previous value. An unfolded value stays a zero-copy range; a folded
// value is collapsed into a private buffer with each fold replaced by
// a single space — the only place the parser copies payload bytes.
type lineScanner struct {
	rest buffer.View
	line int
}

func newLineScanner(block buffer.View) *lineScanner {
	return &lineScanner{rest: block}
}

// next returns the next logical header line. ok is false when the
// block is exhausted.
func (s *lineScanner) next() (headerLine, bool) {
	first, rest, ok := takeLine(s.rest)
	if !ok {
		return headerLine{}, false
	}
	s.rest = rest
	s.line++
	start := s.line

	// Absorb folded continuation lines.
	var folds []buffer.View
	for {
		peek, peekRest, ok := takeLine(s.rest)
		if !ok || peek.IsEmpty() {
			break
		}
		if b := peek.Byte(0); b != ' ' && b != '\t' {
			break
		}
		folds = append(folds, peek.TrimSpace())
		s.rest = peekRest
		s.line++
	}

	colon := first.IndexByte(':')
	if colon < 0 {
		return headerLine{line: start, err: &MalformedHeaderError{Line: start}}, true
	}
	name := first.To(colon).TrimSpace()
	value := first.From(colon + 1).TrimSpace()
	if len(folds) > 0 {
		value = unfold(value, folds)
	}
	if name.IsEmpty() {
		return headerLine{line: start, err: &MalformedHeaderError{Line: start}}, true
	}
	return headerLine{name: name, value: value, line: start}, true
}

// takeLine is nextLine, but also accepts a final line without a
// terminator (the framer guarantees the block ends at the empty line,
// so a trailing unterminated fragment only appears in direct use).
func takeLine(v buffer.View) (line, rest buffer.View, ok bool) {
	if v.IsEmpty() {
		return buffer.View{}, buffer.View{}, false
	}
	if line, rest, ok = nextLine(v); ok {
		return line, rest, true
	}
	return v, v.From(v.Len()), true
}

// unfold joins a value and its continuation lines with single spaces
// into a freshly allocated buffer.
func unfold(head buffer.View, folds []buffer.View) buffer.View {
	n := head.Len()
	for _, f := range folds {
		n += 1 + f.Len()
	}
	out := make([]byte, 0, n)
	out = append(out, head.Bytes()...)
	for _, f := range folds {
		out = append(out, ' ')
		out = append(out, f.Bytes()...)
	}
	return buffer.Wrap(out)
}
