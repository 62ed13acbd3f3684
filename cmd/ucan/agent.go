package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ipvm-wg/go-ucan-agent/agent"
	"github.com/ipvm-wg/go-ucan-agent/bearer"
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/ucan"
	"github.com/spf13/cobra"
)

var (
	delegateAudience string
	delegateCaps     []string
	delegateTTL      time.Duration
	delegateNonce    string
	delegateBearer   bool
	importCAR        string
	exportCAR        string
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Use the persistent agent identity",
}

// withAgent opens the configured store, creates the agent and runs fn.
func withAgent(ctx context.Context, fn func(a *agent.Agent) error) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger := cfg.Logger()
	store, err := cfg.OpenStore(ctx, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := agent.Create(ctx, agent.AlgorithmResolver(cfg.Signer.Algorithm),
		agent.WithStore(store),
		agent.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	return fn(a)
}

// parseCapabilities reads resource=ability pairs, each granted with a
// single empty caveat.
func parseCapabilities(pairs []string) (ucan.Capabilities, error) {
	caps := ucan.Capabilities{}
	for _, p := range pairs {
		i := strings.LastIndex(p, "=")
		if i <= 0 || i == len(p)-1 {
			return nil, fmt.Errorf("invalid capability %q: expected resource=ability", p)
		}
		resource, ability := p[:i], p[i+1:]
		if caps[resource] == nil {
			caps[resource] = map[ucan.Ability][]ucan.Caveat{}
		}
		caps[resource][ability] = []ucan.Caveat{{}}
	}
	return caps, nil
}

var agentDIDCmd = &cobra.Command{
	Use:   "did",
	Short: "Print the agent DID",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withAgent(cmd.Context(), func(a *agent.Agent) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.DID())
			return nil
		})
	},
}

var agentDelegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Delegate capabilities to an audience, citing every stored proof",
	Example: `  ucan agent delegate --aud did:key:z6Mk... --cap 'mailto:alice@example.com=msg/send' --ttl 1h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		aud, err := did.Parse(delegateAudience)
		if err != nil {
			return fmt.Errorf("invalid audience: %w", err)
		}
		caps, err := parseCapabilities(delegateCaps)
		if err != nil {
			return err
		}
		var opts []ucan.Option
		if delegateTTL > 0 {
			opts = append(opts, ucan.WithTTL(delegateTTL))
		}
		if delegateNonce != "" {
			opts = append(opts, ucan.WithNonce(delegateNonce))
		}

		return withAgent(cmd.Context(), func(a *agent.Agent) error {
			u, proofs, err := a.Delegate(cmd.Context(), aud, caps, opts...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !delegateBearer {
				fmt.Fprintln(out, u.String())
				return nil
			}
			h := bearer.Encode(u, proofs)
			fmt.Fprintf(out, "%s: %s\n", bearer.AuthorizationHeader, h[bearer.AuthorizationHeader])
			if v, ok := h[bearer.UCANsHeader]; ok {
				fmt.Fprintf(out, "%s: %s\n", bearer.UCANsHeader, v)
			}
			return nil
		})
	},
}

var agentImportCmd = &cobra.Command{
	Use:   "import [jwt...]",
	Short: "Save proofs given as arguments or in a CAR archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		var proofs []ucan.View
		for _, arg := range args {
			u, err := ucan.Parse(strings.TrimSpace(arg))
			if err != nil {
				return err
			}
			proofs = append(proofs, u)
		}

		return withAgent(cmd.Context(), func(a *agent.Agent) error {
			if err := a.SaveProofs(cmd.Context(), proofs...); err != nil {
				return err
			}
			n := len(proofs)
			if importCAR != "" {
				var r io.Reader = os.Stdin
				if importCAR != "-" {
					f, err := os.Open(importCAR)
					if err != nil {
						return err
					}
					defer f.Close()
					r = f
				}
				imported, err := a.ImportProofs(cmd.Context(), r)
				if err != nil {
					return err
				}
				n += len(imported)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d proofs\n", n)
			return nil
		})
	},
}

var agentExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored proof to a CAR archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withAgent(cmd.Context(), func(a *agent.Agent) error {
			if exportCAR == "-" {
				return a.ExportProofs(cmd.Context(), cmd.OutOrStdout())
			}
			f, err := os.Create(exportCAR)
			if err != nil {
				return err
			}
			if err := a.ExportProofs(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		})
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.AddCommand(agentDIDCmd, agentDelegateCmd, agentImportCmd, agentExportCmd)

	agentDelegateCmd.Flags().StringVar(&delegateAudience, "aud", "", "Audience DID")
	agentDelegateCmd.Flags().StringArrayVar(&delegateCaps, "cap", []string{"ucan:*=*"}, "Capability as resource=ability, repeatable")
	agentDelegateCmd.Flags().DurationVar(&delegateTTL, "ttl", 0, "Lifetime of the delegation, none if zero")
	agentDelegateCmd.Flags().StringVar(&delegateNonce, "nonce", "", "Nonce")
	agentDelegateCmd.Flags().BoolVar(&delegateBearer, "bearer", false, "Print bearer headers instead of the token")
	_ = agentDelegateCmd.MarkFlagRequired("aud")

	agentImportCmd.Flags().StringVar(&importCAR, "car", "", "CAR archive to import, - for stdin")
	agentExportCmd.Flags().StringVar(&exportCAR, "out", "proofs.car", "Output path, - for stdout")
}
