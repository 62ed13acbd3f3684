// Package decode turns multiformat encoded keys and did:key strings into
// signers and verifiers of whichever key type they carry.
package decode

import (
	"fmt"
	"strings"

	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	ecdsasigner "github.com/ipvm-wg/go-ucan-agent/principal/ecdsa/signer"
	ecdsaverifier "github.com/ipvm-wg/go-ucan-agent/principal/ecdsa/verifier"
	"github.com/ipvm-wg/go-ucan-agent/principal/ed25519/signer"
	"github.com/ipvm-wg/go-ucan-agent/principal/ed25519/verifier"
	"github.com/ipvm-wg/go-ucan-agent/principal/multiformat"
	rsasigner "github.com/ipvm-wg/go-ucan-agent/principal/rsa/signer"
	rsaverifier "github.com/ipvm-wg/go-ucan-agent/principal/rsa/verifier"
	secpsigner "github.com/ipvm-wg/go-ucan-agent/principal/secp256k1/signer"
	secpverifier "github.com/ipvm-wg/go-ucan-agent/principal/secp256k1/verifier"
)

// Signer decodes a multiformat encoded signer back to the appropriate
// implementation based on the codec prefix.
func Signer(encoded []byte) (principal.Signer, error) {
	code, err := multiformat.Tag(encoded)
	if err != nil {
		return nil, fmt.Errorf("reading signer codec: %w", err)
	}

	switch code {
	case signer.Code:
		return signer.Decode(encoded)
	case rsasigner.Code:
		return rsasigner.Decode(encoded)
	case secpsigner.Code:
		return secpsigner.Decode(encoded)
	case ecdsaverifier.P256.PrivateCode, ecdsaverifier.P384.PrivateCode, ecdsaverifier.P521.PrivateCode:
		return ecdsasigner.Decode(encoded)
	default:
		return nil, fmt.Errorf("unsupported signer codec: 0x%x", code)
	}
}

// Verifier decodes a multiformat encoded verifier back to the appropriate
// implementation based on the codec prefix.
func Verifier(encoded []byte) (principal.Verifier, error) {
	code, err := multiformat.Tag(encoded)
	if err != nil {
		return nil, fmt.Errorf("reading verifier codec: %w", err)
	}

	switch code {
	case verifier.Code:
		return verifier.Decode(encoded)
	case rsaverifier.Code:
		return rsaverifier.Decode(encoded)
	case secpverifier.Code:
		return secpverifier.Decode(encoded)
	case ecdsaverifier.P256.PublicCode, ecdsaverifier.P384.PublicCode, ecdsaverifier.P521.PublicCode:
		return ecdsaverifier.Decode(encoded)
	default:
		return nil, fmt.Errorf("unsupported verifier codec: 0x%x", code)
	}
}

// ComposedParser implements a parser that tries multiple principal parsers
type ComposedParser struct {
	parsers []principal.Parser
}

// NewComposedParser creates a new composed parser with the given parsers
func NewComposedParser(parsers ...principal.Parser) *ComposedParser {
	return &ComposedParser{parsers: parsers}
}

// Parse attempts to parse the DID using each parser in sequence
func (cp *ComposedParser) Parse(id string) (principal.Verifier, error) {
	if !strings.HasPrefix(id, did.Prefix) {
		return nil, fmt.Errorf("expected DID but got %s", id)
	}

	var lastErr error
	for _, parser := range cp.parsers {
		v, err := parser.Parse(id)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("unsupported DID %s: %w", id, lastErr)
	}
	return nil, fmt.Errorf("unsupported DID %s", id)
}

// Or adds another parser to the composed parser
func (cp *ComposedParser) Or(parser principal.Parser) *ComposedParser {
	parsers := append([]principal.Parser{}, cp.parsers...)
	return &ComposedParser{parsers: append(parsers, parser)}
}

// ParserFunc adapts a function to the principal.Parser interface.
type ParserFunc func(did string) (principal.Verifier, error)

func (f ParserFunc) Parse(did string) (principal.Verifier, error) {
	return f(did)
}

var (
	Ed25519Parser   = ParserFunc(verifier.Parse)
	RSAParser       = ParserFunc(rsaverifier.Parse)
	ECDSAParser     = ParserFunc(ecdsaverifier.Parse)
	Secp256k1Parser = ParserFunc(secpverifier.Parse)
)

// DefaultParser returns a composed parser with all supported principal types
func DefaultParser() *ComposedParser {
	return NewComposedParser(
		Ed25519Parser,
		RSAParser,
		ECDSAParser,
		Secp256k1Parser,
	)
}

// ParseDID parses a DID string using the default composed parser
func ParseDID(did string) (principal.Verifier, error) {
	return DefaultParser().Parse(did)
}
