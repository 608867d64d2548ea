package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"firestige.xyz/strix/internal/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config <path>",
	Short: "Write the default configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s\n", args[0])
		return nil
	},
}
