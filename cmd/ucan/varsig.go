package main

import (
	"encoding/hex"
	"fmt"

	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/varsig"
	"github.com/spf13/cobra"
)

var (
	varsigAlgorithm string
	varsigEncoding  string
)

var varsigCmd = &cobra.Command{
	Use:   "varsig",
	Short: "Encode and decode varsig headers",
}

var varsigEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Print the hex varsig header for an algorithm and payload encoding",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := varsig.Encode(varsig.Algorithm(varsigAlgorithm), varsig.Encoding(varsigEncoding))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
		return nil
	},
}

var varsigDecodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a hex varsig header",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := hex.DecodeString(args[0])
		if err != nil {
			return fmt.Errorf("invalid hex: %w", err)
		}
		h, err := varsig.Decode(b)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "alg: %s\nenc: %s\n", h.Algorithm, h.Encoding)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(varsigCmd)
	varsigCmd.AddCommand(varsigEncodeCmd, varsigDecodeCmd)

	varsigEncodeCmd.Flags().StringVar(&varsigAlgorithm, "alg", string(varsig.EdDSA), "Signature algorithm")
	varsigEncodeCmd.Flags().StringVar(&varsigEncoding, "enc", string(varsig.JWT), "Payload encoding (RAW, DAG-PB, DAG-CBOR, DAG-JSON, JWT)")
}
