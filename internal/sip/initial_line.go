package sip

import "firestige.xyz/strix/internal/buffer"

// Recognized Request-URI schemes. Method matching is deliberately
// permissive (any token is a method, for extension methods), so the
// scheme is what distinguishes a request line from garbage.
var requestSchemes = []string{"sip:", "sips:", "tel:", "tels:"}

// RequestLine is the initial line of a SIP request.
type RequestLine struct {
	Method     buffer.View
	RequestURI buffer.View
	Version    buffer.View // e.g. "SIP/2.0" — not validated at framing time
}

// StatusLine is the initial line of a SIP response.
type StatusLine struct {
	Version buffer.View
	Code    int
	Reason  buffer.View
}

// InitialLine is the closed request/status variant heading every
// message. Exactly one of the two payloads is set.
type InitialLine struct {
	raw     buffer.View
	request *RequestLine
	status  *StatusLine
}

// Raw returns the initial line bytes without the terminator.
func (l InitialLine) Raw() buffer.View { return l.raw }

// IsRequest reports whether the line is a request line.
func (l InitialLine) IsRequest() bool { return l.request != nil }

// IsResponse reports whether the line is a status line.
func (l InitialLine) IsResponse() bool { return l.status != nil }

// Request returns the request-line payload, or ErrTypeMismatch when
// the message is a response.
func (l InitialLine) Request() (RequestLine, error) {
	if l.request == nil {
		return RequestLine{}, ErrTypeMismatch
	}
	return *l.request, nil
}

// Status returns the status-line payload, or ErrTypeMismatch when the
// message is a request.
func (l InitialLine) Status() (StatusLine, error) {
	if l.status == nil {
		return StatusLine{}, ErrTypeMismatch
	}
	return *l.status, nil
}

// parseInitialLine classifies and splits the first line of a payload.
// Status lines must read `SIP/<version> <3-digit-code> [reason]`.
// Request lines must be three tokens with a recognized URI scheme and
// a SIP/ version token; the method itself is any non-empty token so
// unregistered extension methods still frame.
func parseInitialLine(line buffer.View) (InitialLine, error) {
	line = line.TrimSpace()
	if line.IsEmpty() {
		return InitialLine{}, ErrMalformedInitialLine
	}
	if line.HasPrefixFold("SIP/") {
		st, err := parseStatusLine(line)
		if err != nil {
			return InitialLine{}, err
		}
		return InitialLine{raw: line, status: &st}, nil
	}
	rl, err := parseRequestLine(line)
	if err != nil {
		return InitialLine{}, err
	}
	return InitialLine{raw: line, request: &rl}, nil
}

func parseStatusLine(line buffer.View) (StatusLine, error) {
	sp := line.IndexByte(' ')
	if sp < 0 {
		return StatusLine{}, ErrMalformedInitialLine
	}
	version := line.To(sp)
	rest := line.From(sp + 1).TrimSpace()

	codeEnd := rest.IndexByte(' ')
	code := rest
	reason := buffer.View{}
	if codeEnd >= 0 {
		code = rest.To(codeEnd)
		reason = rest.From(codeEnd + 1).TrimSpace()
	}
	if code.Len() != 3 {
		return StatusLine{}, ErrMalformedInitialLine
	}
	n, err := code.Uint32()
	if err != nil {
		return StatusLine{}, ErrMalformedInitialLine
	}
	return StatusLine{Version: version, Code: int(n), Reason: reason}, nil
}

func parseRequestLine(line buffer.View) (RequestLine, error) {
	sp1 := line.IndexByte(' ')
	if sp1 <= 0 {
		return RequestLine{}, ErrMalformedInitialLine
	}
	method := line.To(sp1)
	if !isToken(method) {
		return RequestLine{}, ErrMalformedInitialLine
	}
	rest := line.From(sp1 + 1).TrimSpace()
	sp2 := rest.IndexByte(' ')
	if sp2 <= 0 {
		return RequestLine{}, ErrMalformedInitialLine
	}
	uri := rest.To(sp2)
	version := rest.From(sp2 + 1).TrimSpace()
	if !hasRequestScheme(uri) || !version.HasPrefixFold("SIP/") {
		return RequestLine{}, ErrMalformedInitialLine
	}
	return RequestLine{Method: method, RequestURI: uri, Version: version}, nil
}

func hasRequestScheme(uri buffer.View) bool {
	for _, s := range requestSchemes {
		if uri.HasPrefixFold(s) {
			return true
		}
	}
	return false
}

// isToken reports whether v is a non-empty RFC 3261 token.
func isToken(v buffer.View) bool {
	if v.IsEmpty() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if !isTokenChar(v.Byte(i)) {
			return false
		}
	}
	return true
}

func isTokenChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '-', '.', '!', '%', '*', '_', '+', '`', '\'', '~':
		return true
	}
	return false
}
