package sip

import "firestige.xyz/strix/internal/buffer"

// Typed headers are structured views over a RawHeader value. Each
// parse touches only its own value range; a failure is scoped to the
// accessor that asked for it and never invalidates the header index.

// FromHeader is the From header.
type FromHeader struct{ NameAddr }

// ToHeader is the To header.
type ToHeader struct{ NameAddr }

// ContactHeader is the top-most Contact header.
type ContactHeader struct{ NameAddr }

// RouteHeader is a Route header.
type RouteHeader struct{ NameAddr }

// RecordRouteHeader is a Record-Route header.
type RecordRouteHeader struct{ NameAddr }

func parseFromHeader(raw RawHeader) (FromHeader, error) {
	a, err := parseNameAddr(raw.Value)
	if err != nil {
		return FromHeader{}, &HeaderError{Header: "From", Err: err}
	}
	return FromHeader{a}, nil
}

func parseToHeader(raw RawHeader) (ToHeader, error) {
	a, err := parseNameAddr(raw.Value)
	if err != nil {
		return ToHeader{}, &HeaderError{Header: "To", Err: err}
	}
	return ToHeader{a}, nil
}

func parseContactHeader(raw RawHeader) (ContactHeader, error) {
	a, err := parseNameAddr(raw.Value)
	if err != nil {
		return ContactHeader{}, &HeaderError{Header: "Contact", Err: err}
	}
	return ContactHeader{a}, nil
}

func parseRouteHeader(raw RawHeader) (RouteHeader, error) {
	a, err := parseNameAddr(raw.Value)
	if err != nil {
		return RouteHeader{}, &HeaderError{Header: "Route", Err: err}
	}
	return RouteHeader{a}, nil
}

func parseRecordRouteHeader(raw RawHeader) (RecordRouteHeader, error) {
	a, err := parseNameAddr(raw.Value)
	if err != nil {
		return RecordRouteHeader{}, &HeaderError{Header: "Record-Route", Err: err}
	}
	return RecordRouteHeader{a}, nil
}

// ViaHeader is one Via hop: `SIP/2.0/UDP host[:port][;params]`.
type ViaHeader struct {
	Protocol  buffer.View // "SIP"
	Version   buffer.View // "2.0"
	Transport buffer.View // "UDP", "TCP", "TLS", ...
	Host      buffer.View
	Port      int // 0 when absent
	params    Params
}

// Param returns a Via parameter value.
func (h ViaHeader) Param(name string) (buffer.View, bool) { return h.params.Get(name) }

// Branch returns the branch parameter.
func (h ViaHeader) Branch() (buffer.View, bool) { return h.params.Get("branch") }

func parseViaHeader(raw RawHeader) (ViaHeader, error) {
	v := raw.Value.TrimSpace()
	sp := v.IndexByte(' ')
	if sp < 0 {
		return ViaHeader{}, headerErr("Via", "no sent-by in %q", v.String())
	}
	sentProto := v.To(sp)
	rest := v.From(sp + 1).TrimSpace()

	// sent-protocol = SIP "/" version "/" transport
	s1 := sentProto.IndexByte('/')
	if s1 < 0 {
		return ViaHeader{}, headerErr("Via", "bad sent-protocol %q", sentProto.String())
	}
	tail := sentProto.From(s1 + 1)
	s2 := tail.IndexByte('/')
	if s2 < 0 {
		return ViaHeader{}, headerErr("Via", "bad sent-protocol %q", sentProto.String())
	}
	h := ViaHeader{
		Protocol:  sentProto.To(s1),
		Version:   tail.To(s2),
		Transport: tail.From(s2 + 1),
	}

	if semi := rest.IndexByte(';'); semi >= 0 {
		h.params = parseParams(rest.From(semi + 1))
		rest = rest.To(semi).TrimSpace()
	}
	host := rest
	if !rest.IsEmpty() && rest.Byte(0) == '[' {
		end := rest.IndexByte(']')
		if end < 0 {
			return ViaHeader{}, headerErr("Via", "unterminated IPv6 reference in %q", rest.String())
		}
		host = rest.To(end + 1)
		if end+1 < rest.Len() && rest.Byte(end+1) == ':' {
			port, err := rest.From(end + 2).Uint16()
			if err != nil {
				return ViaHeader{}, headerErr("Via", "bad port in %q", rest.String())
			}
			h.Port = int(port)
		}
	} else if c := rest.IndexByte(':'); c >= 0 {
		host = rest.To(c)
		port, err := rest.From(c + 1).Uint16()
		if err != nil {
			return ViaHeader{}, headerErr("Via", "bad port in %q", rest.String())
		}
		h.Port = int(port)
	}
	if host.IsEmpty() {
		return ViaHeader{}, headerErr("Via", "empty sent-by host in %q", v.String())
	}
	h.Host = host
	return h, nil
}

// CSeqHeader is the CSeq header: sequence number and method token.
type CSeqHeader struct {
	Seq    uint32
	Method buffer.View
}

func parseCSeqHeader(raw RawHeader) (CSeqHeader, error) {
	v := raw.Value.TrimSpace()
	sp := v.IndexByte(' ')
	if sp < 0 {
		return CSeqHeader{}, headerErr("CSeq", "missing method in %q", v.String())
	}
	seq, err := v.To(sp).Uint32()
	if err != nil {
		return CSeqHeader{}, &HeaderError{Header: "CSeq", Err: ErrInvalidNumber}
	}
	method := v.From(sp + 1).TrimSpace()
	if !isToken(method) {
		return CSeqHeader{}, headerErr("CSeq", "bad method in %q", v.String())
	}
	return CSeqHeader{Seq: seq, Method: method}, nil
}

// CallIDHeader is the Call-ID header.
type CallIDHeader struct {
	Value buffer.View
}

func parseCallIDHeader(raw RawHeader) (CallIDHeader, error) {
	v := raw.Value.TrimSpace()
	if v.IsEmpty() {
		return CallIDHeader{}, headerErr("Call-ID", "empty value")
	}
	return CallIDHeader{Value: v}, nil
}

// ContentTypeHeader is the Content-Type header: type/subtype plus
// ;-delimited parameters.
type ContentTypeHeader struct {
	Type    buffer.View
	Subtype buffer.View
	params  Params
}

// Param returns a media-type parameter value.
func (h ContentTypeHeader) Param(name string) (buffer.View, bool) { return h.params.Get(name) }

// MediaType returns the lowercase "type/subtype" key used for content
// decoder lookup.
func (h ContentTypeHeader) MediaType() string {
	return h.Type.ToLower() + "/" + h.Subtype.ToLower()
}

func parseContentTypeHeader(raw RawHeader) (ContentTypeHeader, error) {
	v := raw.Value.TrimSpace()
	var params Params
	if semi := v.IndexByte(';'); semi >= 0 {
		params = parseParams(v.From(semi + 1))
		v = v.To(semi).TrimSpace()
	}
	slash := v.IndexByte('/')
	if slash < 0 {
		return ContentTypeHeader{}, headerErr("Content-Type", "no subtype in %q", v.String())
	}
	typ := v.To(slash).TrimSpace()
	sub := v.From(slash + 1).TrimSpace()
	if typ.IsEmpty() || sub.IsEmpty() {
		return ContentTypeHeader{}, headerErr("Content-Type", "bad media type %q", v.String())
	}
	return ContentTypeHeader{Type: typ, Subtype: sub, params: params}, nil
}

// ExpiresHeader is the Expires header in seconds.
type ExpiresHeader struct {
	Seconds uint32
}

func parseExpiresHeader(raw RawHeader) (ExpiresHeader, error) {
	n, err := raw.Value.TrimSpace().Uint32()
	if err != nil {
		return ExpiresHeader{}, &HeaderError{Header: "Expires", Err: ErrInvalidNumber}
	}
	return ExpiresHeader{Seconds: n}, nil
}

// ContentLengthHeader is the Content-Length header.
type ContentLengthHeader struct {
	Length uint32
}

func parseContentLengthHeader(raw RawHeader) (ContentLengthHeader, error) {
	n, err := raw.Value.TrimSpace().Uint32()
	if err != nil {
		return ContentLengthHeader{}, &HeaderError{Header: "Content-Length", Err: ErrInvalidNumber}
	}
	return ContentLengthHeader{Length: n}, nil
}

// ProxyRequireHeader is the Proxy-Require header: the option tags the
// sender demands the proxy to support.
type ProxyRequireHeader struct {
	Tokens []buffer.View
}

func parseProxyRequireHeader(raw RawHeader) (ProxyRequireHeader, error) {
	var h ProxyRequireHeader
	v := raw.Value
	for !v.IsEmpty() {
		var seg buffer.View
		if i := v.IndexByte(','); i >= 0 {
			seg, v = v.To(i), v.From(i+1)
		} else {
			seg, v = v, v.From(v.Len())
		}
		seg = seg.TrimSpace()
		if !seg.IsEmpty() {
			h.Tokens = append(h.Tokens, seg)
		}
	}
	if len(h.Tokens) == 0 {
		return ProxyRequireHeader{}, headerErr("Proxy-Require", "no option tags")
	}
	return h, nil
}

// DigestCredentials is a parsed Authorization or Proxy-Authorization
// header with Digest scheme. Absent fields are empty views; unknown
// parameters are kept in Extra.
type DigestCredentials struct {
	Scheme     buffer.View
	Username   buffer.View
	Realm      buffer.View
	Nonce      buffer.View
	URI        buffer.View
	Response   buffer.View
	Algorithm  buffer.View
	CNonce     buffer.View
	Opaque     buffer.View
	QOP        buffer.View
	NonceCount buffer.View
	Extra      Params
}

func parseDigestCredentials(headerName string, raw RawHeader) (DigestCredentials, error) {
	v := raw.Value.TrimSpace()
	sp := v.IndexByte(' ')
	if sp < 0 {
		return DigestCredentials{}, headerErr(headerName, "no credentials in %q", v.String())
	}
	creds := DigestCredentials{Scheme: v.To(sp)}
	if !creds.Scheme.EqualFold("Digest") {
		return DigestCredentials{}, headerErr(headerName, "unsupported scheme %q", creds.Scheme.String())
	}

	rest := v.From(sp + 1)
	for !rest.IsEmpty() {
		pair, next := nextDigestPair(rest)
		rest = next
		pair = pair.TrimSpace()
		if pair.IsEmpty() {
			continue
		}
		eq := pair.IndexByte('=')
		if eq < 0 {
			return DigestCredentials{}, headerErr(headerName, "bad digest parameter %q", pair.String())
		}
		name := pair.To(eq).TrimSpace()
		value := unquote(pair.From(eq + 1).TrimSpace())
		switch {
		case name.EqualFold("username"):
			creds.Username = value
		case name.EqualFold("realm"):
			creds.Realm = value
		case name.EqualFold("nonce"):
			creds.Nonce = value
		case name.EqualFold("uri"):
			creds.URI = value
		case name.EqualFold("response"):
			creds.Response = value
		case name.EqualFold("algorithm"):
			creds.Algorithm = value
		case name.EqualFold("cnonce"):
			creds.CNonce = value
		case name.EqualFold("opaque"):
			creds.Opaque = value
		case name.EqualFold("qop"):
			creds.QOP = value
		case name.EqualFold("nc"):
			creds.NonceCount = value
		default:
			creds.Extra = append(creds.Extra, Param{Name: name, Value: value})
		}
	}
	return creds, nil
}

// nextDigestPair splits off the next comma-separated key=value pair,
// skipping commas inside quoted strings.
func nextDigestPair(v buffer.View) (pair, rest buffer.View) {
	quoted := false
	for i := 0; i < v.Len(); i++ {
		switch v.Byte(i) {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				return v.To(i), v.From(i + 1)
			}
		}
	}
	return v, v.From(v.Len())
}
