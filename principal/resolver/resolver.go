// Package resolver selects key implementations by JWT algorithm name: it
// verifies signatures for an allowed set of algorithms and generates or
// imports signers of a given algorithm.
package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ipvm-wg/go-ucan-agent/core/result/failure"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	ecdsasigner "github.com/ipvm-wg/go-ucan-agent/principal/ecdsa/signer"
	ecdsaverifier "github.com/ipvm-wg/go-ucan-agent/principal/ecdsa/verifier"
	"github.com/ipvm-wg/go-ucan-agent/principal/ed25519/signer"
	rsasigner "github.com/ipvm-wg/go-ucan-agent/principal/rsa/signer"
	secpsigner "github.com/ipvm-wg/go-ucan-agent/principal/secp256k1/signer"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/varsig"
)

// Algorithms supported by this package, in the order they are tried.
func Algorithms() []string {
	return []string{
		signature.EdDSAName,
		signature.RS256Name,
		signature.ES256Name,
		signature.ES384Name,
		signature.ES512Name,
		signature.ES256KName,
	}
}

// Resolver verifies signatures made with any of a set of algorithms.
type Resolver struct {
	algs []string
}

// New creates a resolver accepting only the passed algorithms.
func New(algs ...string) *Resolver {
	return &Resolver{algs: algs}
}

// Default accepts every supported algorithm.
func Default() *Resolver {
	return New(Algorithms()...)
}

// Verify checks sig over msg with the issuer key. An invalid signature is
// false with no error, an algorithm outside the allowed set is an error.
func (r *Resolver) Verify(issuer crypto.Verifier, msg []byte, sig signature.Signature) (bool, error) {
	alg, err := signature.CodeName(issuer.SignatureCode())
	if err != nil {
		return false, failure.Wrap(varsig.ErrUnsupportedAlgorithm, err, "no verifier for %s", issuer.DID())
	}
	if !slices.Contains(r.algs, alg) {
		return false, failure.New(varsig.ErrUnsupportedAlgorithm, "no verifier for algorithm %s", alg)
	}
	if sig.Code() != issuer.SignatureCode() {
		return false, nil
	}
	return signature.NewSignatureView(sig).Verify(msg, issuer), nil
}

// Generate a new signer for the algorithm.
func Generate(alg string) (principal.Signer, error) {
	switch alg {
	case signature.EdDSAName:
		return signer.Generate()
	case signature.RS256Name:
		return rsasigner.Generate()
	case signature.ES256KName:
		return secpsigner.Generate()
	case signature.ES256Name, signature.ES384Name, signature.ES512Name:
		curve, err := ecdsaverifier.CurveByAlgorithm(alg)
		if err != nil {
			return nil, err
		}
		return ecdsasigner.Generate(curve)
	default:
		return nil, failure.New(varsig.ErrUnsupportedAlgorithm, "cannot generate signer for algorithm %s", alg)
	}
}

// Import a signer of the algorithm from a string produced by its Export.
func Import(alg string, exported string) (principal.Signer, error) {
	var (
		s   principal.Signer
		err error
	)
	switch alg {
	case signature.EdDSAName:
		s, err = signer.Parse(exported)
	case signature.RS256Name:
		s, err = rsasigner.Parse(exported)
	case signature.ES256KName:
		s, err = secpsigner.Parse(exported)
	case signature.ES256Name, signature.ES384Name, signature.ES512Name:
		if strings.HasPrefix(strings.TrimSpace(exported), "{") {
			s, err = ecdsasigner.ImportJWK(exported)
		} else {
			s, err = ecdsasigner.Parse(exported)
		}
	default:
		return nil, failure.New(varsig.ErrUnsupportedAlgorithm, "cannot import signer for algorithm %s", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("importing %s signer: %w", alg, err)
	}
	if s.SignatureAlgorithm() != alg {
		return nil, fmt.Errorf("imported signer uses %s, expected %s", s.SignatureAlgorithm(), alg)
	}
	return s, nil
}
