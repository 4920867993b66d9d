package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stratus-hq/helios/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply defaults and environment
overrides, and report any validation errors without starting the gateway.

Examples:
  # Validate the default config file
  helios validate

  # Validate a specific file
  helios validate --config /etc/helios/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "configuration valid: %s\n", cfgFile)
		fmt.Fprintf(out, "  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(out, "  providers: %d configured\n", len(cfg.Providers))
		fmt.Fprintf(out, "  rate limit: %d req/min\n", cfg.RateLimit.RequestsPerMinute)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
