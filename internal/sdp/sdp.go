// Package sdp decodes SDP session descriptions carried in SIP message
// bodies. It extracts what a capture pipeline needs to follow the
// media plane: the connection address and the m= line media
// descriptions. It registers with the sip package as the decoder for
// application/sdp.
package sdp

import (
	"fmt"
	"net/netip"
	"strings"

	"firestige.xyz/strix/internal/buffer"
)

// ContentType is the media type this package decodes.
const ContentType = "application/sdp"

// Session is a decoded SDP body.
type Session struct {
	ConnectionIP netip.Addr // session-level c= line, media-level overrides
	Media        []MediaDescription
}

// MediaDescription is one m= line with its associated a= attributes.
type MediaDescription struct {
	Type      string // "audio", "video", ...
	Proto     string // "RTP/AVP", "RTP/SAVP", ...
	Port      uint16
	RTCPPort  uint16 // port+1 by default, a=rtcp: or a=rtcp-mux override
	RTCPMux   bool
	Codec     string // first a=rtpmap entry
	Direction string // sendrecv/sendonly/recvonly/inactive
}

// Decode parses an SDP body. The any return type matches the sip
// package's ContentDecoder contract; the concrete type is *Session.
func Decode(body buffer.View) (any, error) {
	sess := &Session{}
	var sessionIP netip.Addr
	var current *MediaDescription

	rest := body
	for !rest.IsEmpty() {
		var line buffer.View
		if i := rest.IndexByte('\n'); i >= 0 {
			line, rest = rest.To(i), rest.From(i+1)
		} else {
			line, rest = rest, rest.From(rest.Len())
		}
		line = line.TrimSpace()
		if line.Len() < 2 || line.Byte(1) != '=' {
			continue
		}
		value := line.From(2).TrimSpace().String()

		switch line.Byte(0) {
		case 'c':
			ip := parseConnectionLine(value)
			if !ip.IsValid() {
				continue
			}
			if current != nil {
				sess.ConnectionIP = ip
			} else {
				sessionIP = ip
			}

		case 'm':
			if current != nil {
				sess.Media = append(sess.Media, *current)
			}
			current = parseMediaLine(value)

		case 'a':
			if current == nil {
				continue
			}
			applyAttribute(current, value)
		}
	}
	if current != nil {
		sess.Media = append(sess.Media, *current)
	}

	if !sess.ConnectionIP.IsValid() && sessionIP.IsValid() {
		sess.ConnectionIP = sessionIP
	}
	if len(sess.Media) == 0 {
		return nil, fmt.Errorf("no media streams in SDP")
	}
	return sess, nil
}

// parseConnectionLine extracts the address from `c=IN IP4 <addr>` or
// `c=IN IP6 <addr>`.
func parseConnectionLine(value string) netip.Addr {
	parts := strings.Fields(value)
	if len(parts) < 3 {
		return netip.Addr{}
	}
	ip, err := netip.ParseAddr(parts[2])
	if err != nil {
		return netip.Addr{}
	}
	return ip
}

// parseMediaLine parses `m=audio 49170 RTP/AVP 0 8`. Returns nil for
// lines without a usable port.
func parseMediaLine(value string) *MediaDescription {
	parts := strings.Fields(value)
	if len(parts) < 3 {
		return nil
	}
	port, err := buffer.FromString(parts[1]).Uint16()
	if err != nil {
		return nil
	}
	return &MediaDescription{
		Type:      parts[0],
		Proto:     parts[2],
		Port:      port,
		RTCPPort:  port + 1,
		Direction: "sendrecv",
	}
}

func applyAttribute(m *MediaDescription, value string) {
	switch {
	case value == "rtcp-mux":
		m.RTCPMux = true
		m.RTCPPort = m.Port

	case strings.HasPrefix(value, "rtcp:"):
		// a=rtcp:53020 [IN IP4 addr] — only the port matters here.
		portStr := value[5:]
		if sp := strings.IndexByte(portStr, ' '); sp >= 0 {
			portStr = portStr[:sp]
		}
		if port, err := buffer.FromString(portStr).Uint16(); err == nil {
			m.RTCPPort = port
		}

	case strings.HasPrefix(value, "rtpmap:"):
		// Only the first rtpmap names the stream's codec.
		if m.Codec == "" {
			if parts := strings.SplitN(value[7:], " ", 2); len(parts) == 2 {
				m.Codec = parts[1]
			}
		}

	case value == "sendrecv" || value == "sendonly" || value == "recvonly" || value == "inactive":
		m.Direction = value
	}
}
