package capture

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"

	"firestige.xyz/strix/internal/core"
)

// LiveConfig configures an AF_PACKET live capture source.
type LiveConfig struct {
	Device       string
	SnapLen      int
	BufferSizeMB int
	TimeoutMs    int
	Filter       string // tcpdump syntax; empty means DefaultFilter
}

// LiveSource captures frames from a network interface through an
// AF_PACKET TPacket v3 ring buffer. Close may be called from another
// goroutine to end a blocked read loop.
type LiveSource struct {
	handle *afpacket.TPacket
	closed atomic.Bool
}

// NewLiveSource opens the ring buffer and installs the compiled BPF
// filter.
func NewLiveSource(cfg LiveConfig) (*LiveSource, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("%w: capture interface is required", core.ErrConfigInvalid)
	}
	if cfg.SnapLen <= 0 {
		cfg.SnapLen = 65535
	}
	if cfg.BufferSizeMB <= 0 {
		cfg.BufferSizeMB = 8
	}
	if cfg.TimeoutMs <= 0 {
		cfg.TimeoutMs = 100
	}
	frameSize, blockSize, numBlocks, err := ringSizes(cfg.BufferSizeMB, cfg.SnapLen)
	if err != nil {
		return nil, err
	}

	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(cfg.Device),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(cfg.TimeoutMs),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open AF_PACKET on %s: %w", cfg.Device, err)
	}

	filter := cfg.Filter
	if filter == "" {
		filter = DefaultFilter
	}
	raw, err := compileFilter(filter, cfg.SnapLen)
	if err != nil {
		tp.Close()
		return nil, err
	}
	if err := tp.SetBPF(raw); err != nil {
		tp.Close()
		return nil, fmt.Errorf("failed to install BPF filter: %w", err)
	}
	return &LiveSource{handle: tp}, nil
}

// compileFilter compiles a tcpdump-style expression with libpcap and
// converts the program into x/net/bpf raw instructions, the form the
// AF_PACKET socket accepts.
func compileFilter(filter string, snapLen int) ([]bpf.RawInstruction, error) {
	prog, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, snapLen, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to compile BPF filter %q: %w", filter, err)
	}
	raw := make([]bpf.RawInstruction, len(prog))
	for i, inst := range prog {
		raw[i] = bpf.RawInstruction{
			Op: inst.Code,
			Jt: inst.Jt,
			Jf: inst.Jf,
			K:  inst.K,
		}
	}
	return raw, nil
}

// ringSizes derives the TPacket geometry from the requested buffer
// size: frames hold one snapshot rounded up to the page size, blocks
// hold 128 frames.
func ringSizes(bufferSizeMB, snapLen int) (frameSize, blockSize, numBlocks int, err error) {
	pageSize := os.Getpagesize()
	frameSize = pageSize
	for frameSize < snapLen {
		frameSize += pageSize
	}
	blockSize = frameSize * 128
	numBlocks = (bufferSizeMB * 1024 * 1024) / blockSize
	if numBlocks == 0 {
		return 0, 0, 0, fmt.Errorf("%w: capture buffer %dMB too small for snaplen %d",
			core.ErrConfigInvalid, bufferSizeMB, snapLen)
	}
	return frameSize, blockSize, numBlocks, nil
}

func (ls *LiveSource) ReadPacket() ([]byte, gopacket.CaptureInfo, error) {
	if ls.closed.Load() {
		return nil, gopacket.CaptureInfo{}, core.ErrSourceClosed
	}
	data, ci, err := ls.handle.ReadPacketData()
	if err != nil {
		if ls.closed.Load() {
			return nil, gopacket.CaptureInfo{}, core.ErrSourceClosed
		}
		return nil, gopacket.CaptureInfo{}, err
	}
	return data, ci, nil
}

func (ls *LiveSource) LinkType() layers.LinkType {
	return layers.LinkTypeEthernet
}

func (ls *LiveSource) Close() error {
	if ls.closed.CompareAndSwap(false, true) {
		ls.handle.Close()
	}
	return nil
}
