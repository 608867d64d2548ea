package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/capture"
	"firestige.xyz/strix/internal/log"
)

var liveInterface string

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Inspect SIP traffic captured live from a network interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		device := liveInterface
		if device == "" {
			device = cfg.Capture.Interface
		}
		source, err := capture.NewLiveSource(capture.LiveConfig{
			Device:       device,
			SnapLen:      cfg.Capture.SnapLen,
			BufferSizeMB: cfg.Capture.BufferSizeMB,
			TimeoutMs:    cfg.Capture.TimeoutMs,
			Filter:       cfg.Capture.Filter,
		})
		if err != nil {
			return err
		}

		inspector, err := capture.NewInspector(map[string]any{
			"proxy_require_extensions": cfg.Sanity.ProxyRequireExtensions,
		})
		if err != nil {
			source.Close()
			return err
		}

		// Close the source on SIGINT/SIGTERM; the read loop then ends.
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sig
			log.GetLogger().Info("shutting down capture")
			source.Close()
		}()

		if err := runPipeline(source, inspector); err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), inspector)
		return nil
	},
}

func init() {
	liveCmd.Flags().StringVarP(&liveInterface, "interface", "i", "",
		"network interface to capture from (overrides config)")
}
