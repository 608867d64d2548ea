package sip

import (
	"reflect"
	"testing"
)

func mustParse(t *testing.T, payload string) *Message {
	t.Helper()
	m, err := Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

const cleanInvite = "INVITE sip:bob@biloxi.com SIP/2.0\r\n" +
	"Via: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds\r\n" +
	"To: Bob <sip:bob@biloxi.com>\r\n" +
	"From: Alice <sip:alice@atlanta.com>;tag=1928301774\r\n" +
	"Call-ID: a84b4c76e66710@pc33.atlanta.com\r\n" +
	"CSeq: 314159 INVITE\r\n" +
	"Contact: <sip:alice@pc33.atlanta.com>\r\n" +
	"Content-Length: 0\r\n" +
	"\r\n"

func TestVerifyCleanMessage(t *testing.T) {
	m := mustParse(t, cleanInvite)
	if got := m.Verify(); len(got) != 0 {
		t.Errorf("violations = %v, want none", got)
	}
}

func TestVerifyContentLengthMismatch(t *testing.T) {
	m := mustParse(t,
		"INVITE sip:bob@biloxi.com SIP/2.0\r\n"+
			"Via: SIP/2.0/UDP pc33.atlanta.com\r\n"+
			"To: <sip:bob@biloxi.com>\r\n"+
			"From: <sip:alice@atlanta.com>;tag=1\r\n"+
			"Call-ID: test-call-id\r\n"+
			"CSeq: 1 INVITE\r\n"+
			"Content-Length: 5\r\n"+
			"\r\n")
	got := m.Verify()
	if len(got) != 1 {
		t.Fatalf("violations = %v, want exactly one", got)
	}
	if got[0].Check != CheckContentLength || got[0].Severity != SeverityError {
		t.Errorf("violation = %+v", got[0])
	}
}

func TestVerifyMissingRequiredHeaders(t *testing.T) {
	m := mustParse(t,
		"INVITE sip:bob@biloxi.com SIP/2.0\r\n"+
			"Call-ID: test-call-id\r\n"+
			"\r\n")
	got := m.Verify()
	missing := 0
	for _, v := range got {
		if v.Check == CheckRequiredHeaders {
			missing++
		}
	}
	// To, From, CSeq and Via are absent; Call-ID is present.
	if missing != 4 {
		t.Errorf("required_headers violations = %d, want 4 (%v)", missing, got)
	}
}

func TestVerifyCSeqMethodMismatch(t *testing.T) {
	m := mustParse(t,
		"INVITE sip:bob@biloxi.com SIP/2.0\r\n"+
			"Via: SIP/2.0/UDP pc33.atlanta.com\r\n"+
			"To: <sip:bob@biloxi.com>\r\n"+
			"From: <sip:alice@atlanta.com>;tag=1\r\n"+
			"Call-ID: test-call-id\r\n"+
			"CSeq: 1 REGISTER\r\n"+
			"\r\n")
	got := m.Verify()
	if len(got) != 1 || got[0].Check != CheckCSeqMethod {
		t.Errorf("violations = %v, want one cseq_method", got)
	}
}

func TestVerifyCSeqUnparsable(t *testing.T) {
	m := mustParse(t,
		"OPTIONS sip:bob@biloxi.com SIP/2.0\r\n"+
			"Via: SIP/2.0/UDP pc33.atlanta.com\r\n"+
			"To: <sip:bob@biloxi.com>\r\n"+
			"From: <sip:alice@atlanta.com>;tag=1\r\n"+
			"Call-ID: test-call-id\r\n"+
			"CSeq: abc OPTIONS\r\n"+
			"\r\n")
	got := m.Verify()
	if len(got) != 1 || got[0].Check != CheckCSeqValue {
		t.Errorf("violations = %v, want one cseq_value", got)
	}
}

func TestVerifyVersionWarning(t *testing.T) {
	m := mustParse(t,
		"INVITE sip:bob@biloxi.com SIP/3.0\r\n"+
			"Via: SIP/2.0/UDP pc33.atlanta.com\r\n"+
			"To: <sip:bob@biloxi.com>\r\n"+
			"From: <sip:alice@atlanta.com>;tag=1\r\n"+
			"Call-ID: test-call-id\r\n"+
			"CSeq: 1 INVITE\r\n"+
			"\r\n")
	got := m.Verify()
	if len(got) != 1 || got[0].Check != CheckRURIVersion || got[0].Severity != SeverityWarning {
		t.Errorf("violations = %v, want one ruri_version warning", got)
	}
}

func TestVerifyExpires(t *testing.T) {
	m := mustParse(t,
		"REGISTER sip:registrar.biloxi.com SIP/2.0\r\n"+
			"Via: SIP/2.0/UDP bobspc.biloxi.com\r\n"+
			"To: <sip:bob@biloxi.com>\r\n"+
			"From: <sip:bob@biloxi.com>;tag=456248\r\n"+
			"Call-ID: 843817637684230@998sdasdh09\r\n"+
			"CSeq: 1826 REGISTER\r\n"+
			"Expires: not-a-number\r\n"+
			"\r\n")
	got := m.Verify()
	if len(got) != 1 || got[0].Check != CheckExpiresValue {
		t.Errorf("violations = %v, want one expires_value", got)
	}
}

func TestCheckProxyRequire(t *testing.T) {
	payload := "INVITE sip:bob@biloxi.com SIP/2.0\r\n" +
		"Via: SIP/2.0/UDP pc33.atlanta.com\r\n" +
		"To: <sip:bob@biloxi.com>\r\n" +
		"From: <sip:alice@atlanta.com>;tag=1\r\n" +
		"Call-ID: test-call-id\r\n" +
		"CSeq: 1 INVITE\r\n" +
		"Proxy-Require: sec-agree, precondition\r\n" +
		"\r\n"

	// Default checker supports no extensions, so every token is flagged.
	m := mustParse(t, payload)
	var flagged []string
	for _, v := range m.Verify() {
		if v.Check == CheckProxyRequire {
			flagged = append(flagged, v.Detail)
		}
	}
	if len(flagged) != 2 {
		t.Errorf("proxy_require violations = %v, want 2", flagged)
	}

	// A checker configured with one of the tokens flags only the other.
	c := NewChecker("sec-agree")
	got := c.Check(mustParse(t, payload))
	if len(got) != 1 || got[0].Check != CheckProxyRequire {
		t.Fatalf("violations = %v, want one proxy_require", got)
	}

	c = NewChecker("sec-agree", "precondition")
	if got := c.Check(mustParse(t, payload)); len(got) != 0 {
		t.Errorf("violations = %v, want none with both extensions supported", got)
	}
}

func TestCheckParseURI(t *testing.T) {
	m := mustParse(t,
		"INVITE sip:bob@biloxi.com SIP/2.0\r\n"+
			"Via: SIP/2.0/UDP pc33.atlanta.com\r\n"+
			"To: <sip:bob@biloxi.com\r\n"+ // unterminated bracket
			"From: <sip:alice@atlanta.com>;tag=1\r\n"+
			"Call-ID: test-call-id\r\n"+
			"CSeq: 1 INVITE\r\n"+
			"\r\n")
	got := m.Verify()
	if len(got) != 1 || got[0].Check != CheckParseURI {
		t.Errorf("violations = %v, want one parse_uri", got)
	}
}

func TestCheckDigestMissingFields(t *testing.T) {
	m := mustParse(t,
		"REGISTER sip:registrar.biloxi.com SIP/2.0\r\n"+
			"Via: SIP/2.0/UDP bobspc.biloxi.com\r\n"+
			"To: <sip:bob@biloxi.com>\r\n"+
			"From: <sip:bob@biloxi.com>;tag=456248\r\n"+
			"Call-ID: test-call-id\r\n"+
			"CSeq: 1826 REGISTER\r\n"+
			`Authorization: Digest username="bob", realm="biloxi.com"`+"\r\n"+
			"\r\n")
	got := m.Verify()
	// nonce, uri and response are missing.
	if len(got) != 3 {
		t.Fatalf("violations = %v, want 3", got)
	}
	for _, v := range got {
		if v.Check != CheckDigestCredentials {
			t.Errorf("violation = %+v, want digest_credentials", v)
		}
	}
}

func TestVerifyStableAcrossCalls(t *testing.T) {
	m := mustParse(t,
		"INVITE sip:bob@biloxi.com SIP/3.0\r\n"+
			"To: <sip:bob@biloxi.com>\r\n"+
			"From: <sip:alice@atlanta.com>;tag=1\r\n"+
			"CSeq: 1 REGISTER\r\n"+
			"Content-Length: 99\r\n"+
			"\r\n")
	first := m.Verify()
	second := m.Verify()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Verify not stable:\nfirst  = %v\nsecond = %v", first, second)
	}
	if len(first) == 0 {
		t.Fatal("expected violations")
	}
	// Battery order: required_headers before cseq checks before content_length.
	if first[0].Check != CheckRequiredHeaders {
		t.Errorf("first violation = %+v, want required_headers", first[0])
	}
	last := first[len(first)-1]
	if last.Check != CheckContentLength {
		t.Errorf("last violation = %+v, want content_length", last)
	}
}
