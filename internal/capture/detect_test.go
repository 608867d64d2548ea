package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikeSIP(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		srcPort  uint16
		dstPort  uint16
		expected bool
	}{
		{
			name:     "standard port wins regardless of payload",
			payload:  "definitely not sip",
			dstPort:  5060,
			expected: true,
		},
		{
			name:     "tls port on source side",
			payload:  "junk",
			srcPort:  5061,
			expected: true,
		},
		{
			name:     "INVITE on nonstandard port",
			payload:  "INVITE sip:bob@biloxi.com SIP/2.0\r\n",
			srcPort:  12345,
			dstPort:  23456,
			expected: true,
		},
		{
			name:     "response on nonstandard port",
			payload:  "SIP/2.0 200 OK\r\n",
			srcPort:  12345,
			dstPort:  23456,
			expected: true,
		},
		{
			name:     "SUBSCRIBE matched through the 8-byte window",
			payload:  "SUBSCRIBE sip:presence@example.com SIP/2.0\r\n",
			srcPort:  12345,
			dstPort:  23456,
			expected: true,
		},
		{
			name:     "http on nonstandard port",
			payload:  "GET / HTTP/1.1\r\n",
			srcPort:  8080,
			dstPort:  34567,
			expected: false,
		},
		{
			name:     "short payload on nonstandard port",
			payload:  "BYE",
			srcPort:  12345,
			dstPort:  23456,
			expected: false,
		},
		{
			name:     "empty payload",
			payload:  "",
			srcPort:  12345,
			dstPort:  23456,
			expected: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LooksLikeSIP([]byte(tt.payload), tt.srcPort, tt.dstPort)
			assert.Equal(t, tt.expected, got)
		})
	}
}
