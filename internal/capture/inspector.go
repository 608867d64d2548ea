package capture

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/patrickmn/go-cache"

	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/sdp"
	"firestige.xyz/strix/internal/sip"
)

const (
	defaultCallTTL = 24 * time.Hour
	defaultCleanup = 1 * time.Hour
)

var registerDecoders sync.Once

// Options configures an Inspector. It is decoded from a generic
// map so callers can pass through config-file sections untouched.
type Options struct {
	ProxyRequireExtensions []string      `mapstructure:"proxy_require_extensions"`
	CallTTL                time.Duration `mapstructure:"call_ttl"`
}

// Report is the result of inspecting one packet.
type Report struct {
	Msg        *sip.Message
	Labels     core.Labels
	Violations []sip.Violation
}

// CallStats aggregates per-call counters, keyed by Call-ID.
type CallStats struct {
	CallID     string
	Messages   int
	Violations int
	LastSeen   time.Time
}

// Stats are the pipeline-wide counters.
type Stats struct {
	Packets       int
	SIPMessages   int
	ParseFailures int
	Violations    int
}

// Inspector runs each captured payload through the SIP parser and the
// sanity checker, extracts labels and aggregates per-call statistics
// in a TTL cache.
type Inspector struct {
	checker *sip.Checker
	calls   *cache.Cache
	log     log.Logger

	mu    sync.Mutex
	stats Stats
}

// NewInspector builds an Inspector from generic options (see Options
// for the recognized keys). The application/sdp content decoder is
// registered on first construction.
func NewInspector(rawOpts map[string]any) (*Inspector, error) {
	var opts Options
	if err := mapstructure.Decode(rawOpts, &opts); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}
	if opts.CallTTL <= 0 {
		opts.CallTTL = defaultCallTTL
	}
	registerDecoders.Do(func() {
		sip.RegisterContentDecoder(sdp.ContentType, sdp.Decode)
	})
	return &Inspector{
		checker: sip.NewChecker(opts.ProxyRequireExtensions...),
		calls:   cache.New(opts.CallTTL, defaultCleanup),
		log:     log.GetLogger().WithField("component", "inspector"),
	}, nil
}

// Inspect parses one packet. Non-SIP payloads return core.ErrNotSIP;
// unframeable payloads return the framing error; both are counted.
func (i *Inspector) Inspect(pkt *core.Packet) (*Report, error) {
	i.mu.Lock()
	i.stats.Packets++
	i.mu.Unlock()

	if !LooksLikeSIP(pkt.Payload, pkt.SrcPort, pkt.DstPort) {
		return nil, core.ErrNotSIP
	}

	msg, err := sip.Parse(pkt.Payload)
	if err != nil {
		i.mu.Lock()
		i.stats.ParseFailures++
		i.mu.Unlock()
		i.log.WithError(err).WithField("src", pkt.SrcIP.String()).Debug("unframeable SIP payload")
		return nil, err
	}

	violations := i.checker.Check(msg)
	labels := buildLabels(msg, violations)

	i.mu.Lock()
	i.stats.SIPMessages++
	i.stats.Violations += len(violations)
	i.mu.Unlock()

	i.trackCall(msg, violations, pkt.Timestamp)

	return &Report{Msg: msg, Labels: labels, Violations: violations}, nil
}

// buildLabels extracts the key headers into flat labels. Header parse
// failures leave the corresponding label unset; they never fail the
// inspection.
func buildLabels(msg *sip.Message, violations []sip.Violation) core.Labels {
	labels := make(core.Labels)

	if method, err := msg.Method(); err == nil {
		labels[core.LabelSIPMethod] = method.String()
	}
	if st, err := msg.Response(); err == nil {
		labels[core.LabelSIPStatusCode] = strconv.Itoa(st.Code)
	}
	if callID, err := msg.CallID(); err == nil {
		labels[core.LabelSIPCallID] = callID.Value.String()
	}
	if from, err := msg.From(); err == nil {
		labels[core.LabelSIPFromURI] = from.URI().String()
	}
	if to, err := msg.To(); err == nil {
		labels[core.LabelSIPToURI] = to.URI().String()
	}
	if via, err := msg.TopVia(); err == nil {
		labels[core.LabelSIPVia] = via.Host.String()
	}
	labels[core.LabelSIPInitial] = strconv.FormatBool(msg.IsInitial())
	labels[core.LabelSIPViolations] = strconv.Itoa(len(violations))
	return labels
}

func (i *Inspector) trackCall(msg *sip.Message, violations []sip.Violation, ts time.Time) {
	callID, err := msg.CallID()
	if err != nil {
		return
	}
	key := callID.Value.String()
	stats := &CallStats{CallID: key}
	if cached, found := i.calls.Get(key); found {
		stats = cached.(*CallStats)
	}
	stats.Messages++
	stats.Violations += len(violations)
	stats.LastSeen = ts
	i.calls.SetDefault(key, stats)

	// BYE and CANCEL end the call's signaling; drop the entry early.
	if msg.IsBye() || msg.IsCancel() {
		i.calls.Delete(key)
	}
}

// Stats returns a snapshot of the pipeline counters.
func (i *Inspector) Stats() Stats {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stats
}

// ActiveCalls returns the number of calls currently tracked.
func (i *Inspector) ActiveCalls() int {
	return i.calls.ItemCount()
}
