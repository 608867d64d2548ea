package sip

import "firestige.xyz/strix/internal/buffer"

// messageFrame is the result of structural framing: the classified
// initial line plus raw byte ranges for the header block and body.
// Header contents are not touched here.
type messageFrame struct {
	initial InitialLine
	headers buffer.View // first header byte up to (exclusive) the empty line
	body    buffer.View // everything after the empty-line terminator
}

// frameMessage locates the initial line, the header block and the body
// of a raw SIP payload. Lines end with CRLF; a bare LF is accepted for
// leniency. Content-Length is deliberately not consulted — declared
// versus actual body length is a sanity check, not a framing failure.
func frameMessage(payload buffer.View) (messageFrame, error) {
	line, rest, ok := nextLine(payload)
	if !ok {
		return messageFrame{}, ErrMalformedInitialLine
	}
	initial, err := parseInitialLine(line)
	if err != nil {
		return messageFrame{}, err
	}

	// Scan for the empty line terminating the header block.
	headerStart := rest
	scan := rest
	for {
		line, next, ok := nextLine(scan)
		if !ok {
			// Ran out of payload before an empty line.
			return messageFrame{}, ErrUnterminatedHeaders
		}
		if line.TrimSpace().IsEmpty() {
			headerLen := headerStart.Len() - scan.Len()
			return messageFrame{
				initial: initial,
				headers: headerStart.To(headerLen),
				body:    next,
			}, nil
		}
		scan = next
	}
}

// nextLine splits off the first line of v. The returned line excludes
// the CRLF (or bare LF) terminator; rest starts after it. ok is false
// when v contains no line terminator at all.
func nextLine(v buffer.View) (line, rest buffer.View, ok bool) {
	nl := v.IndexByte('\n')
	if nl < 0 {
		return buffer.View{}, buffer.View{}, false
	}
	line = v.To(nl)
	if line.Len() > 0 && line.Byte(line.Len()-1) == '\r' {
		line = line.To(line.Len() - 1)
	}
	return line, v.From(nl + 1), true
}
