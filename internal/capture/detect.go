package capture

import "strings"

// sipPrefixes are the method/status magic strings a SIP payload can
// open with. SUBSCRIBE is truncated to fit the 8-byte window.
var sipPrefixes = []string{
	"SIP/2.0 ",
	"INVITE ",
	"REGISTER",
	"ACK ",
	"BYE ",
	"CANCEL ",
	"OPTIONS ",
	"SUBSCRI",
	"NOTIFY ",
	"MESSAGE ",
	"INFO ",
	"PRACK ",
	"UPDATE ",
	"REFER ",
	"PUBLISH ",
}

// LooksLikeSIP is the fast pre-filter run before parsing: standard SIP
// ports or a known method/status prefix. False negatives only skip the
// payload; false positives are caught by the framer.
func LooksLikeSIP(payload []byte, srcPort, dstPort uint16) bool {
	switch {
	case srcPort == 5060, dstPort == 5060, srcPort == 5061, dstPort == 5061:
		return true
	}
	if len(payload) < 8 {
		return false
	}
	prefix := string(payload[:8])
	for _, p := range sipPrefixes {
		if strings.HasPrefix(prefix, p) {
			return true
		}
	}
	return false
}
