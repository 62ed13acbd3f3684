package ucan

import (
	"fmt"
	"time"

	"github.com/ipvm-wg/go-ucan-agent/core/clock"
	"github.com/ipvm-wg/go-ucan-agent/decode"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto"
	pdm "github.com/ipvm-wg/go-ucan-agent/ucan/datamodel/payload"
	"github.com/ipvm-wg/go-ucan-agent/ucan/jwt"
)

// Option is an option configuring a UCAN.
type Option func(cfg *ucanConfig) error

type ucanConfig struct {
	exp   *UTCUnixTimestamp
	ttl   *time.Duration
	nbf   UTCUnixTimestamp
	nnc   string
	fct   Facts
	prf   []Link
	clock clock.Clock
}

// WithExpiration configures the expiration time in UTC seconds since Unix
// epoch. It takes precedence over WithTTL.
func WithExpiration(exp UTCUnixTimestamp) Option {
	return func(cfg *ucanConfig) error {
		cfg.exp = &exp
		return nil
	}
}

// WithTTL sets the expiration to the given duration from now, truncated to
// whole seconds.
func WithTTL(ttl time.Duration) Option {
	return func(cfg *ucanConfig) error {
		if ttl < 0 {
			return fmt.Errorf("negative ttl: %s", ttl)
		}
		cfg.ttl = &ttl
		return nil
	}
}

// WithNotBefore configures the time in UTC seconds since Unix epoch when the
// UCAN will become valid.
func WithNotBefore(nbf UTCUnixTimestamp) Option {
	return func(cfg *ucanConfig) error {
		cfg.nbf = nbf
		return nil
	}
}

// WithNonce configures the nonce value for the UCAN.
func WithNonce(nnc string) Option {
	return func(cfg *ucanConfig) error {
		cfg.nnc = nnc
		return nil
	}
}

// WithFacts configures the facts for the UCAN.
func WithFacts(fct Facts) Option {
	return func(cfg *ucanConfig) error {
		cfg.fct = fct
		return nil
	}
}

// WithProofs configures the proofs for the UCAN, replacing any set before.
func WithProofs(prf []Link) Option {
	return func(cfg *ucanConfig) error {
		cfg.prf = prf
		return nil
	}
}

// WithProof adds proofs for the UCAN.
func WithProof(prf ...Link) Option {
	return func(cfg *ucanConfig) error {
		cfg.prf = append(cfg.prf, prf...)
		return nil
	}
}

// WithClock sets the time source used for TTL based expiration.
func WithClock(c clock.Clock) Option {
	return func(cfg *ucanConfig) error {
		cfg.clock = c
		return nil
	}
}

// Issue creates a new signed token with a given issuer. Without an explicit
// expiration or a TTL the token never expires.
func Issue(issuer crypto.Signer, audience Principal, capabilities Capabilities, options ...Option) (View, error) {
	cfg := ucanConfig{clock: clock.Real()}
	for _, opt := range options {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	capabilities = cloneCapabilities(capabilities)
	if capabilities == nil {
		capabilities = Capabilities{}
	}
	if err := ValidateCapabilities(capabilities); err != nil {
		return nil, err
	}

	exp := cfg.exp
	if exp == nil && cfg.ttl != nil {
		e := cfg.clock.Now().Unix() + int64(cfg.ttl.Seconds())
		exp = &e
	}

	var prfstrs []string
	for _, link := range cfg.prf {
		prfstrs = append(prfstrs, link.String())
	}

	payload := pdm.PayloadModel{
		Aud: audience.DID().String(),
		Iss: issuer.DID().String(),
		Cap: capabilities,
		Exp: exp,
		Ucv: Version,
		Fct: cloneFacts(cfg.fct),
		Prf: prfstrs,
		Nbf: cfg.nbf,
		Nnc: cfg.nnc,
	}

	a, err := jwt.Encode(payload, issuer)
	if err != nil {
		return nil, fmt.Errorf("encoding token: %w", err)
	}

	verifier, err := issuerVerifier(issuer)
	if err != nil {
		return nil, err
	}

	return &ucanView{
		decoded: jwt.Decoded{
			Header:    headerOf(issuer),
			Payload:   payload,
			Issuer:    verifier,
			Audience:  audience.DID(),
			Proofs:    cloneLinks(cfg.prf),
			Artifacts: a,
		},
	}, nil
}

func issuerVerifier(issuer crypto.Signer) (principal.Verifier, error) {
	if s, ok := issuer.(interface{ Verifier() principal.Verifier }); ok {
		return s.Verifier(), nil
	}
	v, err := decode.ParseDID(issuer.DID().String())
	if err != nil {
		return nil, fmt.Errorf("resolving issuer verifier: %w", err)
	}
	return v, nil
}

// ParseOption is an option configuring how a token is parsed.
type ParseOption func(cfg *parseConfig)

type parseConfig struct {
	parser principal.Parser
}

// WithParser sets the parser resolving the issuer DID to a verifier. The
// default understands did:key for every supported key type.
func WithParser(p principal.Parser) ParseOption {
	return func(cfg *parseConfig) {
		cfg.parser = p
	}
}

// Parse decodes a token string. The signature is not verified, use
// View.IsValid for that.
func Parse(token string, options ...ParseOption) (View, error) {
	cfg := parseConfig{parser: decode.DefaultParser()}
	for _, opt := range options {
		opt(&cfg)
	}
	d, err := jwt.Decode(token, cfg.parser)
	if err != nil {
		return nil, err
	}
	return &ucanView{decoded: d}, nil
}

// IsExpired checks if a UCAN is expired at the given time. A token without
// an expiration, or with an expiration of zero, never expires.
func IsExpired(u View, now time.Time) bool {
	exp := u.Expiration()
	return exp != nil && *exp != 0 && *exp <= now.Unix()
}

// IsTooEarly checks if a UCAN is not active yet at the given time.
func IsTooEarly(u View, now time.Time) bool {
	nbf := u.NotBefore()
	return nbf != 0 && nbf > now.Unix()
}

// IsValidAt verifies the signature of the UCAN with the resolver, then
// checks the time bounds against now.
func IsValidAt(u View, resolver Resolver, now time.Time) (bool, error) {
	ok, err := resolver.Verify(u.Issuer(), u.SignedPayload(), u.Signature())
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if IsExpired(u, now) {
		return false, nil
	}
	if IsTooEarly(u, now) {
		return false, nil
	}
	return true, nil
}

// Now returns a UTC Unix timestamp for comparing it against time window of the
// UCAN.
func Now() UTCUnixTimestamp {
	return time.Now().Unix()
}
