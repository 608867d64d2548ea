package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/capture"
	"firestige.xyz/strix/internal/core"
	"firestige.xyz/strix/internal/log"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pcap>",
	Short: "Inspect SIP traffic in a pcap capture file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		source, err := capture.NewFileSource(args[0], cfg.Capture.Filter)
		if err != nil {
			return err
		}
		defer source.Close()

		inspector, err := capture.NewInspector(map[string]any{
			"proxy_require_extensions": cfg.Sanity.ProxyRequireExtensions,
		})
		if err != nil {
			return err
		}
		if err := runPipeline(source, inspector); err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), inspector)
		return nil
	},
}

// runPipeline drains a source through the inspector until EOF.
func runPipeline(source capture.Source, inspector *capture.Inspector) error {
	logger := log.GetLogger()
	for {
		data, ci, err := source.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, core.ErrSourceClosed) {
				return nil
			}
			return err
		}
		pkt, err := capture.DecodePacket(data, source.LinkType(), ci)
		if err != nil {
			continue
		}
		report, err := inspector.Inspect(pkt)
		if err != nil {
			continue
		}
		entry := logger.WithFields(map[string]interface{}{
			"src":    fmt.Sprintf("%s:%d", pkt.SrcIP, pkt.SrcPort),
			"dst":    fmt.Sprintf("%s:%d", pkt.DstIP, pkt.DstPort),
			"method": report.Labels[core.LabelSIPMethod],
		})
		if callID, ok := report.Labels[core.LabelSIPCallID]; ok {
			entry = entry.WithField("call_id", callID)
		}
		if len(report.Violations) == 0 {
			entry.Debug("sane SIP message")
			continue
		}
		for _, v := range report.Violations {
			entry.WithField("check", v.Check).Warnf("sanity violation: %s", v.Detail)
		}
	}
}

func printSummary(w io.Writer, inspector *capture.Inspector) {
	stats := inspector.Stats()
	fmt.Fprintf(w, "packets:         %d\n", stats.Packets)
	fmt.Fprintf(w, "sip messages:    %d\n", stats.SIPMessages)
	fmt.Fprintf(w, "parse failures:  %d\n", stats.ParseFailures)
	fmt.Fprintf(w, "violations:      %d\n", stats.Violations)
	fmt.Fprintf(w, "tracked calls:   %d\n", inspector.ActiveCalls())
}
