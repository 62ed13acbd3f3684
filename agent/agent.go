// Package agent persists a signer and the proofs delegated to it, and issues
// new delegations backed by every proof it holds.
//
// One Agent per store is assumed. Two agents sharing a store can race when
// the signer is first created.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ipvm-wg/go-ucan-agent/core/clock"
	"github.com/ipvm-wg/go-ucan-agent/core/result/failure"
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/kv"
	"github.com/ipvm-wg/go-ucan-agent/kv/memory"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/ucan"
)

const ErrSignerResolverMismatch = failure.Kind("SignerResolverMismatch")

const (
	signerKey = "signer"
	proofsKey = "proofs"
)

// SignerResolver returns the agent signer. exported is the value a previous
// run persisted, empty on first run.
type SignerResolver func(ctx context.Context, exported string) (principal.Signer, error)

// Option is an option configuring an agent.
type Option func(cfg *agentConfig) error

type agentConfig struct {
	store     kv.KV
	logger    *slog.Logger
	clock     clock.Clock
	cacheSize int
}

// WithStore sets where the signer and proofs are kept. Defaults to an in
// memory store.
func WithStore(s kv.KV) Option {
	return func(cfg *agentConfig) error {
		cfg.store = s
		return nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *agentConfig) error {
		cfg.logger = l
		return nil
	}
}

func WithClock(c clock.Clock) Option {
	return func(cfg *agentConfig) error {
		cfg.clock = c
		return nil
	}
}

// WithProofCacheSize sets how many parsed proofs are kept in memory.
func WithProofCacheSize(n int) Option {
	return func(cfg *agentConfig) error {
		if n < 0 {
			return fmt.Errorf("negative proof cache size: %d", n)
		}
		cfg.cacheSize = n
		return nil
	}
}

type Agent struct {
	store  kv.KV
	signer principal.Signer
	logger *slog.Logger
	clock  clock.Clock
	cache  *proofCache
}

// Create loads the agent signer through resolve and persists its export.
func Create(ctx context.Context, resolve SignerResolver, options ...Option) (*Agent, error) {
	cfg := agentConfig{}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.clock == nil {
		cfg.clock = clock.Real()
	}
	if cfg.store == nil {
		cfg.store = memory.New(memory.WithClock(cfg.clock))
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	exported, _, err := kv.GetValue[string](ctx, cfg.store, kv.Key{signerKey})
	if err != nil {
		return nil, fmt.Errorf("loading signer: %w", err)
	}

	signer, err := resolve(ctx, exported)
	if err != nil {
		return nil, failure.Wrap(ErrSignerResolverMismatch, err, "Signer resolver mismatch.")
	}

	export, err := signer.Export()
	if err != nil {
		return nil, fmt.Errorf("exporting signer: %w", err)
	}
	if err := kv.SetValue(ctx, cfg.store, kv.Key{signerKey}, export); err != nil {
		return nil, fmt.Errorf("saving signer: %w", err)
	}

	cache, err := newProofCache(cfg.cacheSize)
	if err != nil {
		return nil, err
	}

	cfg.logger.Info("agent ready", "did", signer.DID(), "algorithm", signer.SignatureAlgorithm(), "new", exported == "")

	return &Agent{
		store:  cfg.store,
		signer: signer,
		logger: cfg.logger,
		clock:  cfg.clock,
		cache:  cache,
	}, nil
}

func (a *Agent) DID() did.DID {
	return a.signer.DID()
}

func (a *Agent) Signer() principal.Signer {
	return a.signer
}

// Proofs loads every unexpired proof the agent holds, ordered by CID.
func (a *Agent) Proofs(ctx context.Context) (*ucan.Store, error) {
	store := ucan.NewStore()
	for entry, err := range a.store.List(ctx, kv.Key{proofsKey}) {
		if err != nil {
			return nil, fmt.Errorf("listing proofs: %w", err)
		}
		if len(entry.Key) != 2 {
			continue
		}
		u, ok := a.cache.Get(entry.Key[1])
		if !ok {
			token, err := kv.DecodeValue[string](entry.Value)
			if err != nil {
				return nil, fmt.Errorf("decoding proof %s: %w", entry.Key[1], err)
			}
			u, err = ucan.Parse(token)
			if err != nil {
				return nil, fmt.Errorf("parsing proof %s: %w", entry.Key[1], err)
			}
			a.cache.Put(u)
		}
		store.Add(u)
	}
	return store, nil
}

// Delegate issues a UCAN from the agent to audience, citing every proof the
// agent holds. Proofs passed in options are replaced. The returned store
// holds the cited proofs.
func (a *Agent) Delegate(ctx context.Context, audience ucan.Principal, capabilities ucan.Capabilities, options ...ucan.Option) (ucan.View, *ucan.Store, error) {
	store, err := a.Proofs(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := append([]ucan.Option{ucan.WithClock(a.clock)}, options...)
	opts = append(opts, ucan.WithProofs(store.Links()))

	u, err := ucan.Issue(a.signer, audience, capabilities, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("issuing delegation: %w", err)
	}
	a.logger.Debug("delegated", "audience", audience.DID(), "ucan", u.Link(), "proofs", store.Len())
	return u, store, nil
}

// SaveProofs stores proofs under their CID. A proof with an expiration is
// dropped from the store once it expires.
func (a *Agent) SaveProofs(ctx context.Context, proofs ...ucan.View) error {
	for _, p := range proofs {
		var opts []kv.SetOption
		if exp := p.Expiration(); exp != nil && *exp != 0 {
			opts = append(opts, kv.WithExpiration(*exp))
		}
		key := kv.Key{proofsKey, p.Link().String()}
		if err := kv.SetValue(ctx, a.store, key, p.String(), opts...); err != nil {
			return fmt.Errorf("saving proof %s: %w", p.Link(), err)
		}
		a.cache.Put(p)
		if p.Audience() != a.DID() {
			a.logger.Warn("saved proof for another audience", "ucan", p.Link(), "audience", p.Audience())
		}
	}
	return nil
}
