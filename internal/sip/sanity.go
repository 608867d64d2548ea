package sip

import "fmt"

// Severity grades a sanity violation.
type Severity int

const (
	// SeverityWarning marks findings that do not make the message
	// unusable (e.g. an unusual SIP version in the request line).
	SeverityWarning Severity = iota
	// SeverityError marks structural problems a proxy would reject
	// the message for.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Names of the fixed check battery, stable across releases. The set
// mirrors the sanity checks of a production SIP proxy.
const (
	CheckRequiredHeaders   = "required_headers"
	CheckRURIScheme        = "ruri_scheme"
	CheckRURIVersion       = "ruri_version"
	CheckCSeqMethod        = "cseq_method"
	CheckCSeqValue         = "cseq_value"
	CheckContentLength     = "content_length"
	CheckExpiresValue      = "expires_value"
	CheckProxyRequire      = "proxy_require"
	CheckParseURI          = "parse_uri"
	CheckDigestCredentials = "digest_credentials"
)

// Violation is one structural finding. Violations are produced in a
// fixed check order, so two Verify calls on the same message yield
// identical sequences.
type Violation struct {
	Check    string
	Severity Severity
	Detail   string
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Check, v.Detail)
}

// Checker runs the fixed battery of structural sanity checks. It is
// purely observational: Check never fails and never mutates the
// message. The only configuration is the set of Proxy-Require option
// tags the deployment supports.
type Checker struct {
	supported map[string]struct{}
}

// NewChecker creates a Checker that accepts the given Proxy-Require
// extension tokens. With no extensions configured, any Proxy-Require
// token is a violation.
func NewChecker(supportedExtensions ...string) *Checker {
	c := &Checker{supported: make(map[string]struct{}, len(supportedExtensions))}
	for _, ext := range supportedExtensions {
		c.supported[ext] = struct{}{}
	}
	return c
}

var defaultChecker = NewChecker()

// Check runs every check and collects the violations in battery order.
func (c *Checker) Check(m *Message) []Violation {
	var out []Violation
	out = c.checkRequiredHeaders(m, out)
	out = c.checkRequestURI(m, out)
	out = c.checkCSeq(m, out)
	out = c.checkContentLength(m, out)
	out = c.checkExpires(m, out)
	out = c.checkProxyRequire(m, out)
	out = c.checkURIs(m, out)
	out = c.checkDigest(m, out)
	return out
}

var requiredHeaders = []string{"To", "From", "CSeq", "Call-ID", "Via"}

func (c *Checker) checkRequiredHeaders(m *Message, out []Violation) []Violation {
	for _, name := range requiredHeaders {
		if _, ok := m.Header(name); !ok {
			out = append(out, Violation{
				Check:    CheckRequiredHeaders,
				Severity: SeverityError,
				Detail:   fmt.Sprintf("missing %s header", name),
			})
		}
	}
	return out
}

func (c *Checker) checkRequestURI(m *Message, out []Violation) []Violation {
	rl, err := m.initial.Request()
	if err != nil {
		return out // responses carry no request URI
	}
	if uri, err := ParseURI(rl.RequestURI); err == nil {
		switch {
		case uri.Scheme.EqualFold("sip"), uri.Scheme.EqualFold("sips"),
			uri.Scheme.EqualFold("tel"), uri.Scheme.EqualFold("tels"):
		default:
			out = append(out, Violation{
				Check:    CheckRURIScheme,
				Severity: SeverityError,
				Detail:   fmt.Sprintf("unsupported request URI scheme %q", uri.Scheme.String()),
			})
		}
	}
	if !rl.Version.EqualFold("SIP/2.0") {
		out = append(out, Violation{
			Check:    CheckRURIVersion,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("request line version %q, expected SIP/2.0", rl.Version.String()),
		})
	}
	return out
}

func (c *Checker) checkCSeq(m *Message, out []Violation) []Violation {
	raw, ok := m.Header("CSeq")
	if !ok {
		return out // absence is reported by required_headers
	}
	cseq, err := parseCSeqHeader(raw)
	if err != nil {
		out = append(out, Violation{
			Check:    CheckCSeqValue,
			Severity: SeverityError,
			Detail:   fmt.Sprintf("unparsable CSeq %q", raw.Value.String()),
		})
		return out
	}
	if rl, err := m.initial.Request(); err == nil {
		if !cseq.Method.Equal(rl.Method) {
			out = append(out, Violation{
				Check:    CheckCSeqMethod,
				Severity: SeverityError,
				Detail: fmt.Sprintf("CSeq method %q does not match request method %q",
					cseq.Method.String(), rl.Method.String()),
			})
		}
	}
	return out
}

func (c *Checker) checkContentLength(m *Message, out []Violation) []Violation {
	raw, ok := m.Header("Content-Length")
	if !ok {
		return out
	}
	cl, err := parseContentLengthHeader(raw)
	if err != nil {
		out = append(out, Violation{
			Check:    CheckContentLength,
			Severity: SeverityError,
			Detail:   fmt.Sprintf("unparsable Content-Length %q", raw.Value.String()),
		})
		return out
	}
	if int(cl.Length) != m.bodyRange.Len() {
		out = append(out, Violation{
			Check:    CheckContentLength,
			Severity: SeverityError,
			Detail: fmt.Sprintf("declared Content-Length %d, actual body length %d",
				cl.Length, m.bodyRange.Len()),
		})
	}
	return out
}

func (c *Checker) checkExpires(m *Message, out []Violation) []Violation {
	raw, ok := m.Header("Expires")
	if !ok {
		return out
	}
	if _, err := parseExpiresHeader(raw); err != nil {
		out = append(out, Violation{
			Check:    CheckExpiresValue,
			Severity: SeverityError,
			Detail:   fmt.Sprintf("unparsable Expires %q", raw.Value.String()),
		})
	}
	return out
}

func (c *Checker) checkProxyRequire(m *Message, out []Violation) []Violation {
	for _, raw := range m.Headers("Proxy-Require") {
		pr, err := parseProxyRequireHeader(raw)
		if err != nil {
			continue
		}
		for _, tok := range pr.Tokens {
			if _, ok := c.supported[tok.String()]; !ok {
				out = append(out, Violation{
					Check:    CheckProxyRequire,
					Severity: SeverityError,
					Detail:   fmt.Sprintf("unsupported extension %q", tok.String()),
				})
			}
		}
	}
	return out
}

// uriHeaders lists the headers whose value must carry a parseable URI.
var uriHeaders = []string{"To", "From", "Contact", "Route", "Record-Route"}

func (c *Checker) checkURIs(m *Message, out []Violation) []Violation {
	if rl, err := m.initial.Request(); err == nil {
		if _, err := ParseURI(rl.RequestURI); err != nil {
			out = append(out, Violation{
				Check:    CheckParseURI,
				Severity: SeverityError,
				Detail:   fmt.Sprintf("unparsable request URI %q", rl.RequestURI.String()),
			})
		}
	}
	for _, name := range uriHeaders {
		for _, raw := range m.Headers(name) {
			addr, err := parseNameAddr(raw.Value)
			if err == nil {
				_, err = addr.ParsedURI()
			}
			if err != nil {
				out = append(out, Violation{
					Check:    CheckParseURI,
					Severity: SeverityError,
					Detail:   fmt.Sprintf("unparsable URI in %s header %q", name, raw.Value.String()),
				})
			}
		}
	}
	return out
}

// digestFields are the parameters every digest credential must carry
// with a non-empty value.
var digestFields = []struct {
	name string
	get  func(DigestCredentials) int
}{
	{"realm", func(d DigestCredentials) int { return d.Realm.Len() }},
	{"nonce", func(d DigestCredentials) int { return d.Nonce.Len() }},
	{"uri", func(d DigestCredentials) int { return d.URI.Len() }},
	{"response", func(d DigestCredentials) int { return d.Response.Len() }},
}

func (c *Checker) checkDigest(m *Message, out []Violation) []Violation {
	for _, name := range []string{"Authorization", "Proxy-Authorization"} {
		for _, raw := range m.Headers(name) {
			creds, err := parseDigestCredentials(name, raw)
			if err != nil {
				out = append(out, Violation{
					Check:    CheckDigestCredentials,
					Severity: SeverityError,
					Detail:   fmt.Sprintf("unparsable %s credentials", name),
				})
				continue
			}
			for _, f := range digestFields {
				if f.get(creds) == 0 {
					out = append(out, Violation{
						Check:    CheckDigestCredentials,
						Severity: SeverityError,
						Detail:   fmt.Sprintf("%s credentials missing %s", name, f.name),
					})
				}
			}
		}
	}
	return out
}
