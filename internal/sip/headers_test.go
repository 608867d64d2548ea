package sip

import (
	"testing"

	"firestige.xyz/strix/internal/buffer"
)

func block(s string) buffer.View { return buffer.FromString(s) }

func TestHeaderIndexOrderAndAliases(t *testing.T) {
	ix := buildHeaderIndex(block(
		"Via: SIP/2.0/UDP first.example.com\r\n" +
			"To: Bob <sip:bob@biloxi.com>\r\n" +
			"v: SIP/2.0/TCP second.example.com\r\n" +
			"VIA: SIP/2.0/TLS third.example.com\r\n"))

	vias := ix.get("Via")
	if len(vias) != 3 {
		t.Fatalf("via occurrences = %d, want 3", len(vias))
	}
	// Wire order preserved, compact form indexed under the long name.
	wantHosts := []string{"first", "second", "third"}
	for i, want := range wantHosts {
		if ix.get("via")[i].Value.Index(want) < 0 {
			t.Errorf("via[%d] = %q, want host %s", i, vias[i].Value.String(), want)
		}
		if vias[i].Occurrence != i {
			t.Errorf("via[%d].Occurrence = %d", i, vias[i].Occurrence)
		}
	}

	// Compact and long forms are the same query.
	if len(ix.get("v")) != 3 {
		t.Errorf("get(v) = %d occurrences, want 3", len(ix.get("v")))
	}
	top, ok := ix.top("v")
	if !ok || top.Value.Index("first") < 0 {
		t.Errorf("top(v) = %q", top.Value.String())
	}
	if len(ix.get("t")) != 1 || len(ix.get("To")) != 1 || len(ix.get("TO")) != 1 {
		t.Error("To lookups disagree across spellings")
	}
}

func TestHeaderIndexSkipsMalformedLines(t *testing.T) {
	ix := buildHeaderIndex(block(
		"To: Bob <sip:bob@biloxi.com>\r\n" +
			"this line has no separator\r\n" +
			"From: Alice <sip:alice@atlanta.com>\r\n"))

	if _, ok := ix.top("To"); !ok {
		t.Error("To missing")
	}
	if _, ok := ix.top("From"); !ok {
		t.Error("From missing after malformed line")
	}
}

func TestFoldingRoundTrip(t *testing.T) {
	// A folded value yields one logical value with each fold collapsed
	// to a single space, however many physical lines it spanned.
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "two-line fold",
			in:   "Subject: I know you're there,\r\n pick up the phone\r\n",
			want: "I know you're there, pick up the phone",
		},
		{
			name: "three-line fold with tabs",
			in:   "Subject: first\r\n\tsecond\r\n\t third\r\n",
			want: "first second third",
		},
		{
			name: "no fold",
			in:   "Subject: plain\r\n",
			want: "plain",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := buildHeaderIndex(block(tt.in))
			raw, ok := ix.top("Subject")
			if !ok {
				t.Fatal("Subject missing")
			}
			if got := raw.Value.String(); got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Via", "via"},
		{"v", "via"},
		{"F", "from"},
		{"i", "call-id"},
		{"l", "content-length"},
		{"c", "content-type"},
		{"m", "contact"},
		{"k", "supported"},
		{"X-Custom", "x-custom"},
	}
	for _, tt := range tests {
		if got := canonicalName(tt.in); got != tt.want {
			t.Errorf("canonicalName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLineScannerValueTrimming(t *testing.T) {
	ix := buildHeaderIndex(block("Call-ID:    a84b4c76e66710   \r\n"))
	raw, ok := ix.top("i")
	if !ok {
		t.Fatal("Call-ID missing")
	}
	if !raw.Value.EqualString("a84b4c76e66710") {
		t.Errorf("value = %q", raw.Value.String())
	}
}
