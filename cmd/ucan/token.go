package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ipvm-wg/go-ucan-agent/principal/resolver"
	"github.com/ipvm-wg/go-ucan-agent/ucan"
	"github.com/spf13/cobra"
)

var verifyAlgorithms []string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect and verify UCAN tokens",
}

var tokenDecodeCmd = &cobra.Command{
	Use:   "decode <jwt>",
	Short: "Print a token as JSON without verifying it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := ucan.Parse(strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(u, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <jwt>",
	Short: "Verify the signature and time bounds of a token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := ucan.Parse(strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}
		ok, err := u.IsValid(resolver.New(verifyAlgorithms...))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("invalid token %s", u.Link())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "valid: %s\n", u.Link())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenDecodeCmd, tokenVerifyCmd)

	tokenVerifyCmd.Flags().StringSliceVar(&verifyAlgorithms, "alg", resolver.Algorithms(), "Accepted signature algorithms")
}
