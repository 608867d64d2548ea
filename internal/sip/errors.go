// Package sip implements a lazy, zero-copy SIP message parser for
// payloads extracted from captured network traffic. A Message is
// framed once (initial line, header block, body range) and everything
// else — header index, typed headers, body content — is materialized
// on first access and cached.
package sip

import (
	"errors"
	"fmt"
)

// Sentinel errors of the parsing engine. Construction-time failures
// (initial line, header block termination) abort Parse entirely; all
// other errors are scoped to the accessor that produced them.
var (
	// ErrMalformedInitialLine means the payload does not start with a
	// parseable request or status line. Fatal to message construction.
	ErrMalformedInitialLine = errors.New("strix: malformed initial line")

	// ErrUnterminatedHeaders means no empty line terminates the header
	// block before the payload ends. Fatal to message construction.
	ErrUnterminatedHeaders = errors.New("strix: unterminated header block")

	// ErrTypeMismatch is returned by Request on a response message and
	// by Response on a request message.
	ErrTypeMismatch = errors.New("strix: message type mismatch")

	// ErrHeaderMissing is returned by typed accessors when the header
	// is not present in the message at all.
	ErrHeaderMissing = errors.New("strix: header not present")

	// ErrInvalidNumber reports a numeric header field (CSeq sequence,
	// Expires, Content-Length, status code) that is not an unsigned
	// decimal within range.
	ErrInvalidNumber = errors.New("strix: invalid numeric value")

	// ErrContentDecode wraps a registered content decoder failure.
	ErrContentDecode = errors.New("strix: content decode failed")
)

// HeaderError reports a typed-header specialization failure. It is
// scoped to the single accessor call that triggered the parse; other
// headers and the header index stay valid.
type HeaderError struct {
	Header string // canonical header name
	Err    error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("strix: parse %s header: %v", e.Header, e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }

func headerErr(name string, format string, args ...any) error {
	return &HeaderError{Header: name, Err: fmt.Errorf(format, args...)}
}

// MalformedHeaderError reports a physical header line without a colon
// separator. The line is skipped during indexing; the error is carried
// only so diagnostics can name the offending line.
type MalformedHeaderError struct {
	Line int // 1-based line number within the header block
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("strix: malformed header at line %d", e.Line)
}
