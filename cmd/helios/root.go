package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "helios",
	Short: "Helios - resilient AI inference gateway",
	Long: `Helios is an HTTP gateway for AI inference traffic that keeps
unreliable backends usable:

  - Per-client sliding-window rate limiting
  - Retry with exponential backoff and jitter
  - Ordered fallback across multiple providers (Anthropic, OpenAI)
  - Token usage and cost accounting
  - Prometheus metrics and OpenTelemetry tracing`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
