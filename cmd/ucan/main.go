// Package main is the entry point for the ucan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ucan",
	Short: "Issue, inspect and verify UCAN tokens",
	Long: `Issue, inspect and verify UCAN capability tokens.

The agent commands keep a signer and the proofs delegated to it in the store
named by the configuration file (--config or UCAN_CONFIG).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML configuration (default $UCAN_CONFIG)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
