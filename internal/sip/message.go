package sip

import (
	"sync"

	"firestige.xyz/strix/internal/buffer"
)

// Message is a parsed SIP message. It owns the backing byte view of
// the whole payload; every range reachable from it borrows those bytes
// and must not outlive them. A Message is immutable after Parse — the
// header index and the framed body are computed at most once, behind
// sync.Once, so concurrent readers are safe.
type Message struct {
	payload   buffer.View
	initial   InitialLine
	headerRng buffer.View
	bodyRange buffer.View

	indexOnce sync.Once
	index     *headerIndex

	bodyOnce sync.Once
	body     Body
	bodyErr  error
}

// Parse frames a raw payload into a Message. The bytes are wrapped,
// never copied; the caller must not modify b afterwards. Only framing
// runs here — header contents are parsed on first access. A payload
// that cannot be framed (no parseable initial line, no header block
// terminator) is not a Message and Parse fails.
func Parse(b []byte) (*Message, error) {
	payload := buffer.Wrap(b)
	f, err := frameMessage(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		payload:   payload,
		initial:   f.initial,
		headerRng: f.headers,
		bodyRange: f.body,
	}, nil
}

func (m *Message) headerIndex() *headerIndex {
	m.indexOnce.Do(func() {
		m.index = buildHeaderIndex(m.headerRng)
	})
	return m.index
}

// Raw returns the whole backing payload.
func (m *Message) Raw() buffer.View { return m.payload }

// InitialLine returns the classified first line.
func (m *Message) InitialLine() InitialLine { return m.initial }

// IsRequest reports whether the message is a request.
func (m *Message) IsRequest() bool { return m.initial.IsRequest() }

// IsResponse reports whether the message is a response.
func (m *Message) IsResponse() bool { return m.initial.IsResponse() }

// Request returns the request line, failing with ErrTypeMismatch on a
// response.
func (m *Message) Request() (RequestLine, error) { return m.initial.Request() }

// Response returns the status line, failing with ErrTypeMismatch on a
// request.
func (m *Message) Response() (StatusLine, error) { return m.initial.Status() }

// Method returns the message method: the request-line method for
// requests, the CSeq method for responses.
func (m *Message) Method() (buffer.View, error) {
	if rl, err := m.initial.Request(); err == nil {
		return rl.Method, nil
	}
	cseq, err := m.CSeq()
	if err != nil {
		return buffer.View{}, err
	}
	return cseq.Method, nil
}

// Header returns the top-most occurrence of name. Lookup is
// case-insensitive and accepts compact forms ("v" for "Via").
func (m *Message) Header(name string) (RawHeader, bool) {
	return m.headerIndex().top(name)
}

// Headers returns all occurrences of name in wire order, nil when
// absent.
func (m *Message) Headers(name string) []RawHeader {
	return m.headerIndex().get(name)
}

func (m *Message) topHeader(name string) (RawHeader, error) {
	raw, ok := m.headerIndex().top(name)
	if !ok {
		return RawHeader{}, &HeaderError{Header: name, Err: ErrHeaderMissing}
	}
	return raw, nil
}

// From returns the parsed From header.
func (m *Message) From() (FromHeader, error) {
	raw, err := m.topHeader("From")
	if err != nil {
		return FromHeader{}, err
	}
	return parseFromHeader(raw)
}

// To returns the parsed To header.
func (m *Message) To() (ToHeader, error) {
	raw, err := m.topHeader("To")
	if err != nil {
		return ToHeader{}, err
	}
	return parseToHeader(raw)
}

// CallID returns the parsed Call-ID header.
func (m *Message) CallID() (CallIDHeader, error) {
	raw, err := m.topHeader("Call-ID")
	if err != nil {
		return CallIDHeader{}, err
	}
	return parseCallIDHeader(raw)
}

// CSeq returns the parsed CSeq header.
func (m *Message) CSeq() (CSeqHeader, error) {
	raw, err := m.topHeader("CSeq")
	if err != nil {
		return CSeqHeader{}, err
	}
	return parseCSeqHeader(raw)
}

// TopVia returns the top-most Via header.
func (m *Message) TopVia() (ViaHeader, error) {
	raw, err := m.topHeader("Via")
	if err != nil {
		return ViaHeader{}, err
	}
	return parseViaHeader(raw)
}

// Vias returns every Via hop in wire order. A hop that fails to parse
// fails the whole call; use Headers("Via") for raw access.
func (m *Message) Vias() ([]ViaHeader, error) {
	raws := m.Headers("Via")
	if len(raws) == 0 {
		return nil, &HeaderError{Header: "Via", Err: ErrHeaderMissing}
	}
	out := make([]ViaHeader, 0, len(raws))
	for _, raw := range raws {
		via, err := parseViaHeader(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, via)
	}
	return out, nil
}

// Contact returns the top-most Contact header.
func (m *Message) Contact() (ContactHeader, error) {
	raw, err := m.topHeader("Contact")
	if err != nil {
		return ContactHeader{}, err
	}
	return parseContactHeader(raw)
}

// TopRoute returns the top-most Route header.
func (m *Message) TopRoute() (RouteHeader, error) {
	raw, err := m.topHeader("Route")
	if err != nil {
		return RouteHeader{}, err
	}
	return parseRouteHeader(raw)
}

// TopRecordRoute returns the top-most Record-Route header.
func (m *Message) TopRecordRoute() (RecordRouteHeader, error) {
	raw, err := m.topHeader("Record-Route")
	if err != nil {
		return RecordRouteHeader{}, err
	}
	return parseRecordRouteHeader(raw)
}

// ContentType returns the parsed Content-Type header.
func (m *Message) ContentType() (ContentTypeHeader, error) {
	raw, err := m.topHeader("Content-Type")
	if err != nil {
		return ContentTypeHeader{}, err
	}
	return parseContentTypeHeader(raw)
}

// Expires returns the parsed Expires header.
func (m *Message) Expires() (ExpiresHeader, error) {
	raw, err := m.topHeader("Expires")
	if err != nil {
		return ExpiresHeader{}, err
	}
	return parseExpiresHeader(raw)
}

// ContentLength returns the parsed Content-Length header.
func (m *Message) ContentLength() (ContentLengthHeader, error) {
	raw, err := m.topHeader("Content-Length")
	if err != nil {
		return ContentLengthHeader{}, err
	}
	return parseContentLengthHeader(raw)
}

// ProxyRequire returns the parsed top-most Proxy-Require header.
func (m *Message) ProxyRequire() (ProxyRequireHeader, error) {
	raw, err := m.topHeader("Proxy-Require")
	if err != nil {
		return ProxyRequireHeader{}, err
	}
	return parseProxyRequireHeader(raw)
}

// Authorization returns the parsed top-most Authorization header.
func (m *Message) Authorization() (DigestCredentials, error) {
	raw, err := m.topHeader("Authorization")
	if err != nil {
		return DigestCredentials{}, err
	}
	return parseDigestCredentials("Authorization", raw)
}

// ProxyAuthorization returns the parsed top-most Proxy-Authorization
// header.
func (m *Message) ProxyAuthorization() (DigestCredentials, error) {
	raw, err := m.topHeader("Proxy-Authorization")
	if err != nil {
		return DigestCredentials{}, err
	}
	return parseDigestCredentials("Proxy-Authorization", raw)
}

func (m *Message) methodIs(method string) bool {
	v, err := m.Method()
	return err == nil && v.EqualFold(method)
}

// IsInvite reports whether the message method is INVITE. This asks
// about the method, not whether the message is an INVITE request.
func (m *Message) IsInvite() bool { return m.methodIs("INVITE") }

// IsBye reports whether the message method is BYE.
func (m *Message) IsBye() bool { return m.methodIs("BYE") }

// IsAck reports whether the message method is ACK.
func (m *Message) IsAck() bool { return m.methodIs("ACK") }

// IsCancel reports whether the message method is CANCEL.
func (m *Message) IsCancel() bool { return m.methodIs("CANCEL") }

// IsOptions reports whether the message method is OPTIONS.
func (m *Message) IsOptions() bool { return m.methodIs("OPTIONS") }

// IsMessage reports whether the message method is MESSAGE.
func (m *Message) IsMessage() bool { return m.methodIs("MESSAGE") }

// IsInfo reports whether the message method is INFO.
func (m *Message) IsInfo() bool { return m.methodIs("INFO") }

// IsRegister reports whether the message method is REGISTER.
func (m *Message) IsRegister() bool { return m.methodIs("REGISTER") }

// IsInitial reports whether the message starts outside any dialog:
// true exactly when the To header carries no tag parameter.
func (m *Message) IsInitial() bool {
	to, err := m.To()
	if err != nil {
		return true
	}
	_, tagged := to.Tag()
	return !tagged
}

// HasContent reports whether the message carries a body.
func (m *Message) HasContent() bool { return !m.bodyRange.IsEmpty() }

// Content frames the body on first call and caches the result. With a
// registered decoder for the content type the body comes back decoded;
// otherwise it stays opaque. Decoder failures are returned, not
// swallowed.
func (m *Message) Content() (Body, error) {
	m.bodyOnce.Do(func() {
		var ct *ContentTypeHeader
		if h, err := m.ContentType(); err == nil {
			ct = &h
		}
		m.body, m.bodyErr = frameContent(ct, m.bodyRange)
	})
	return m.body, m.bodyErr
}

// Verify runs the default sanity check battery (no supported
// Proxy-Require extensions). It never fails; structural problems come
// back as data. Use a Checker directly to supply extensions.
func (m *Message) Verify() []Violation {
	return defaultChecker.Check(m)
}
