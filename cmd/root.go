// Package cmd implements the strix CLI using cobra.
package cmd

import (
	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/config"
	"firestige.xyz/strix/internal/log"
)

var configFile string

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "strix",
	Short: "Strix - SIP message inspection for captured network traffic",
	Long: `Strix parses SIP signaling out of captured network traffic and runs
structural sanity checks against every message.

It reads packets from pcap files or live AF_PACKET capture, frames each
payload into a zero-copy SIP message model, and reports the messages
that a production SIP proxy would consider malformed.`,
	Version: "0.1.0",
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (YAML)")

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initConfigCmd)
}

// loadConfig loads the configured (or default) configuration and
// initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log.Init(&cfg.Log)
	return cfg, nil
}
