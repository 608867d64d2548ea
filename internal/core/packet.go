// Package core defines the data structures shared by the capture
// pipeline, with zero external dependencies.
package core

import (
	"net/netip"
	"time"
)

// Packet is one demultiplexed application payload with its transport
// context. Payload is a zero-copy slice into the captured frame; it is
// only valid until the frame is released.
type Packet struct {
	Timestamp time.Time
	SrcIP     netip.Addr
	DstIP     netip.Addr
	SrcPort   uint16
	DstPort   uint16
	Protocol  uint8 // IP protocol number (6 = TCP, 17 = UDP)
	Payload   []byte
}
