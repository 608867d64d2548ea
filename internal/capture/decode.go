package capture

import (
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/strix/internal/core"
)

// DecodePacket decodes a captured frame down to the application
// payload. Frames without an IP or UDP/TCP layer, or with an empty
// payload, return ErrNotSIP so the caller can skip them cheaply.
// Decoding is lazy and zero-copy: the returned payload aliases data.
func DecodePacket(data []byte, linkType layers.LinkType, ci gopacket.CaptureInfo) (*core.Packet, error) {
	packet := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	pkt := &core.Packet{Timestamp: ci.Timestamp}

	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		pkt.SrcIP, _ = netip.AddrFromSlice(ip.SrcIP)
		pkt.DstIP, _ = netip.AddrFromSlice(ip.DstIP)
	case *layers.IPv6:
		pkt.SrcIP, _ = netip.AddrFromSlice(ip.SrcIP)
		pkt.DstIP, _ = netip.AddrFromSlice(ip.DstIP)
	default:
		return nil, core.ErrNotSIP
	}

	switch t := packet.TransportLayer().(type) {
	case *layers.UDP:
		pkt.Protocol = 17
		pkt.SrcPort = uint16(t.SrcPort)
		pkt.DstPort = uint16(t.DstPort)
		pkt.Payload = t.Payload
	case *layers.TCP:
		pkt.Protocol = 6
		pkt.SrcPort = uint16(t.SrcPort)
		pkt.DstPort = uint16(t.DstPort)
		pkt.Payload = t.Payload
	default:
		return nil, core.ErrNotSIP
	}

	if len(pkt.Payload) == 0 {
		return nil, core.ErrNotSIP
	}
	return pkt, nil
}
