package main

import (
	"fmt"

	"github.com/ipvm-wg/go-ucan-agent/principal/resolver"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/spf13/cobra"
)

var keyAlgorithm string

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage signing keys",
}

var keyGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a signing key",
	Long: `Generate a signing key and print its did:key and export.

The export is a multibase string, or a JWK for the ES256, ES384 and ES512
algorithms.`,
	Example: `  ucan key gen
  ucan key gen --alg ES256K`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := resolver.Generate(keyAlgorithm)
		if err != nil {
			return err
		}
		exported, err := s.Export()
		if err != nil {
			return fmt.Errorf("exporting key: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "did: %s\n", s.DID())
		fmt.Fprintf(out, "alg: %s\n", s.SignatureAlgorithm())
		fmt.Fprintf(out, "key: %s\n", exported)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keyGenCmd)

	keyGenCmd.Flags().StringVar(&keyAlgorithm, "alg", signature.EdDSAName, "Signature algorithm (EdDSA, RS256, ES256, ES384, ES512, ES256K)")
}
