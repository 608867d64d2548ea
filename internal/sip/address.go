package sip

import "firestige.xyz/strix/internal/buffer"

// Param is one ;-delimited generic parameter. Value is empty for
// valueless parameters such as ";lr".
type Param struct {
	Name  buffer.View
	Value buffer.View
}

// Params is an ordered parameter list preserving wire order.
type Params []Param

// Get returns the value of the first parameter with the given name,
// ASCII case-insensitively. ok distinguishes an absent parameter from
// a present-but-empty one.
func (ps Params) Get(name string) (buffer.View, bool) {
	for _, p := range ps {
		if p.Name.EqualFold(name) {
			return p.Value, true
		}
	}
	return buffer.View{}, false
}

// Has reports whether a parameter with the given name is present.
func (ps Params) Has(name string) bool {
	_, ok := ps.Get(name)
	return ok
}

// parseParams splits a ;-delimited, =-split parameter segment. The
// view must start after the leading ';' of the first parameter.
func parseParams(v buffer.View) Params {
	var out Params
	for !v.IsEmpty() {
		var seg buffer.View
		if i := v.IndexByte(';'); i >= 0 {
			seg, v = v.To(i), v.From(i+1)
		} else {
			seg, v = v, v.From(v.Len())
		}
		seg = seg.TrimSpace()
		if seg.IsEmpty() {
			continue
		}
		p := Param{Name: seg}
		if eq := seg.IndexByte('='); eq >= 0 {
			p.Name = seg.To(eq).TrimSpace()
			p.Value = unquote(seg.From(eq + 1).TrimSpace())
		}
		out = append(out, p)
	}
	return out
}

// unquote strips one pair of surrounding double quotes, if present.
// Escaped characters inside quoted strings are left as-is; callers
// comparing quoted values compare the raw escaped bytes.
func unquote(v buffer.View) buffer.View {
	if v.Len() >= 2 && v.Byte(0) == '"' && v.Byte(v.Len()-1) == '"' {
		return v.Slice(1, v.Len()-1)
	}
	return v
}

// URI is a structurally parsed SIP/SIPS/TEL URI. All fields are views
// into the header value; absent parts are empty views. For tel URIs
// the subscriber number lands in User and Host stays empty.
type URI struct {
	Scheme buffer.View
	User   buffer.View
	Host   buffer.View
	Port   int // 0 when absent
	Params Params
}

// ParseURI splits an addr-spec into scheme, user, host, port and URI
// parameters. It is a structural parse, not a grammar validation: the
// sanity checker uses it to decide whether a URI-carrying header is
// intact.
func ParseURI(v buffer.View) (URI, error) {
	v = v.TrimSpace()
	colon := v.IndexByte(':')
	if colon <= 0 {
		return URI{}, headerErr("uri", "no scheme in %q", v.String())
	}
	scheme := v.To(colon)
	if !isToken(scheme) {
		return URI{}, headerErr("uri", "bad scheme in %q", v.String())
	}
	rest := v.From(colon + 1)
	if rest.IsEmpty() {
		return URI{}, headerErr("uri", "empty body in %q", v.String())
	}

	// Split off ?headers then ;params.
	if q := rest.IndexByte('?'); q >= 0 {
		rest = rest.To(q)
	}
	uri := URI{Scheme: scheme}
	if semi := rest.IndexByte(';'); semi >= 0 {
		uri.Params = parseParams(rest.From(semi + 1))
		rest = rest.To(semi)
	}

	if at := rest.IndexByte('@'); at >= 0 {
		uri.User = rest.To(at)
		rest = rest.From(at + 1)
	}

	if scheme.EqualFold("tel") || scheme.EqualFold("tels") {
		// tel URIs have no host part; the number is the user.
		if uri.User.IsEmpty() {
			uri.User = rest
		}
		if uri.User.IsEmpty() {
			return URI{}, headerErr("uri", "empty tel subscriber in %q", v.String())
		}
		return uri, nil
	}

	host := rest
	portStart := -1
	if !rest.IsEmpty() && rest.Byte(0) == '[' {
		// IPv6 reference: [addr] or [addr]:port
		end := rest.IndexByte(']')
		if end < 0 {
			return URI{}, headerErr("uri", "unterminated IPv6 reference in %q", v.String())
		}
		host = rest.To(end + 1)
		if end+1 < rest.Len() {
			if rest.Byte(end+1) != ':' {
				return URI{}, headerErr("uri", "junk after IPv6 reference in %q", v.String())
			}
			portStart = end + 2
		}
	} else if c := rest.IndexByte(':'); c >= 0 {
		host = rest.To(c)
		portStart = c + 1
	}
	if portStart >= 0 {
		port, err := rest.From(portStart).TrimSpace().Uint16()
		if err != nil {
			return URI{}, headerErr("uri", "bad port in %q", v.String())
		}
		uri.Port = int(port)
	}
	host = host.TrimSpace()
	if host.IsEmpty() {
		return URI{}, headerErr("uri", "empty host in %q", v.String())
	}
	uri.Host = host
	return uri, nil
}

// NameAddr is the shared shape of the address headers (From, To,
// Contact, Route, Record-Route): optional display name, an addr-spec
// and trailing header parameters.
type NameAddr struct {
	DisplayName buffer.View // without surrounding quotes, empty if none
	addrSpec    buffer.View
	params      Params
}

// URI returns the raw addr-spec bytes.
func (a NameAddr) URI() buffer.View { return a.addrSpec }

// ParsedURI structurally parses the addr-spec.
func (a NameAddr) ParsedURI() (URI, error) { return ParseURI(a.addrSpec) }

// Param returns a header parameter (the part after the closing '>',
// or after the first ';' in the bracket-less form).
func (a NameAddr) Param(name string) (buffer.View, bool) {
	return a.params.Get(name)
}

// Tag returns the tag parameter.
func (a NameAddr) Tag() (buffer.View, bool) { return a.params.Get("tag") }

// parseNameAddr parses `[display-name] "<" addr-spec ">" *(;param)` or
// the bare addr-spec form, where everything after the first ';' is a
// header parameter.
func parseNameAddr(v buffer.View) (NameAddr, error) {
	v = v.TrimSpace()
	if v.IsEmpty() {
		return NameAddr{}, headerErr("address", "empty value")
	}
	lt := v.IndexByte('<')
	if lt < 0 {
		// Bare addr-spec; params follow the first semicolon.
		a := NameAddr{addrSpec: v}
		if semi := v.IndexByte(';'); semi >= 0 {
			a.addrSpec = v.To(semi).TrimSpace()
			a.params = parseParams(v.From(semi + 1))
		}
		if a.addrSpec.IsEmpty() {
			return NameAddr{}, headerErr("address", "empty addr-spec in %q", v.String())
		}
		return a, nil
	}
	gtRel := v.From(lt).IndexByte('>')
	if gtRel < 0 {
		return NameAddr{}, headerErr("address", "unterminated angle bracket in %q", v.String())
	}
	gt := lt + gtRel
	a := NameAddr{
		DisplayName: unquote(v.To(lt).TrimSpace()),
		addrSpec:    v.Slice(lt+1, gt).TrimSpace(),
	}
	if a.addrSpec.IsEmpty() {
		return NameAddr{}, headerErr("address", "empty addr-spec in %q", v.String())
	}
	after := v.From(gt + 1).TrimSpace()
	if !after.IsEmpty() && after.Byte(0) == ';' {
		a.params = parseParams(after.From(1))
	}
	return a, nil
}
