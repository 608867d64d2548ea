// Package capture acquires SIP payloads from pcap files or live
// AF_PACKET sockets and feeds them through the inspection pipeline.
// It is the collaborator layer around the parser core: everything here
// may be swapped out as long as it delivers one raw payload per
// message to the sip package.
package capture

import (
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"firestige.xyz/strix/internal/core"
)

// DefaultFilter keeps only standard SIP signaling traffic.
const DefaultFilter = "udp port 5060 or tcp port 5060 or udp port 5061 or tcp port 5061"

// Source delivers raw captured frames.
type Source interface {
	// ReadPacket returns the next frame. io.EOF or ErrSourceClosed
	// signals the end of the stream.
	ReadPacket() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
	Close() error
}

// FileSource reads frames from a pcap capture file.
type FileSource struct {
	path   string
	handle *pcap.Handle
}

// NewFileSource opens a pcap file and installs the BPF filter. An
// empty filter falls back to DefaultFilter.
func NewFileSource(path, filter string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: pcap path is required", core.ErrConfigInvalid)
	}
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", path, err)
	}
	if filter == "" {
		filter = DefaultFilter
	}
	if err := handle.SetBPFFilter(filter); err != nil {
		handle.Close()
		return nil, fmt.Errorf("failed to set BPF filter %q: %w", filter, err)
	}
	return &FileSource{path: path, handle: handle}, nil
}

func (fs *FileSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	if fs.handle == nil {
		return nil, gopacket.CaptureInfo{}, core.ErrSourceClosed
	}
	data, ci, err := fs.handle.ReadPacketData()
	if err != nil {
		if err == io.EOF {
			return nil, gopacket.CaptureInfo{}, io.EOF
		}
		return nil, gopacket.CaptureInfo{}, fmt.Errorf("failed to read packet: %w", err)
	}
	return data, ci, nil
}

func (fs *FileSource) LinkType() layers.LinkType {
	if fs.handle == nil {
		return layers.LinkTypeEthernet
	}
	return fs.handle.LinkType()
}

func (fs *FileSource) Close() error {
	if fs.handle != nil {
		fs.handle.Close()
		fs.handle = nil
	}
	return nil
}
