// Package jwt encodes and decodes the three segment JWT envelope of a UCAN.
package jwt

import (
	"fmt"
	"strings"

	"github.com/ipvm-wg/go-ucan-agent/core/ipld"
	"github.com/ipvm-wg/go-ucan-agent/core/ipld/block"
	"github.com/ipvm-wg/go-ucan-agent/core/ipld/hash/sha256"
	"github.com/ipvm-wg/go-ucan-agent/core/result/failure"
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	hdm "github.com/ipvm-wg/go-ucan-agent/ucan/datamodel/header"
	pdm "github.com/ipvm-wg/go-ucan-agent/ucan/datamodel/payload"
	"github.com/ipvm-wg/go-ucan-agent/ucan/formatter"
)

const (
	ErrMalformedEnvelope = failure.Kind("MalformedEnvelope")
	ErrTypeMismatch      = failure.Kind("TypeMismatch")
	ErrAlgorithmMismatch = failure.Kind("AlgorithmMismatch")
)

// Artifacts are derived from a token when it is signed or decoded.
type Artifacts struct {
	Signature signature.SignatureView
	// Token is the full JWT string.
	Token string
	// Bytes is the UTF-8 encoding of Token.
	Bytes []byte
	// Link is a CIDv1 with raw codec and sha2-256 of Bytes.
	Link ipld.Link
}

// Block returns the token bytes addressed by their link.
func (a Artifacts) Block() ipld.Block {
	return block.NewBlock(a.Link, a.Bytes)
}

// SignedPayload returns the bytes the signature was made over.
func (a Artifacts) SignedPayload() []byte {
	i := strings.LastIndexByte(a.Token, '.')
	return a.Bytes[:i]
}

type Decoded struct {
	Header  hdm.HeaderModel
	Payload pdm.PayloadModel
	// Issuer is the verifier resolved from the iss claim.
	Issuer   principal.Verifier
	Audience did.DID
	Proofs   []ipld.Link
	Artifacts
}

func artifacts(token string, sig signature.Signature) (Artifacts, error) {
	bytes := []byte(token)
	blk, err := block.Encode(bytes, block.Raw, sha256.Hasher)
	if err != nil {
		return Artifacts{}, fmt.Errorf("computing token CID: %w", err)
	}
	return Artifacts{
		Signature: signature.NewSignatureView(sig),
		Token:     token,
		Bytes:     bytes,
		Link:      blk.Link(),
	}, nil
}

// Encode signs the payload with signer and returns the resulting token.
func Encode(payload pdm.PayloadModel, signer crypto.Signer) (Artifacts, error) {
	header := hdm.HeaderModel{
		Alg: signer.SignatureAlgorithm(),
		Typ: hdm.Type,
	}
	signed, err := formatter.FormatSignPayload(header, payload)
	if err != nil {
		return Artifacts{}, err
	}
	sig, err := signer.Sign([]byte(signed))
	if err != nil {
		return Artifacts{}, fmt.Errorf("signing token: %w", err)
	}
	return artifacts(signed+"."+formatter.FormatSignature(sig), sig)
}

// Decode parses a token without verifying its signature. The issuer DID is
// resolved to a verifier with parser and must use the algorithm named in the
// header.
func Decode(token string, parser principal.Parser) (Decoded, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 || segments[0] == "" || segments[1] == "" || segments[2] == "" {
		return Decoded{}, failure.New(
			ErrMalformedEnvelope,
			"can't parse UCAN: %s: expected JWT format: 3 dot-separated base64url-encoded values",
			token,
		)
	}

	header, err := formatter.ParseHeader(segments[0])
	if err != nil {
		return Decoded{}, err
	}
	if header.Typ != hdm.Type {
		return Decoded{}, failure.New(ErrTypeMismatch, "expected type %q got %q", hdm.Type, header.Typ)
	}

	payload, err := formatter.ParsePayload(segments[1])
	if err != nil {
		return Decoded{}, err
	}

	issuer, err := parser.Parse(payload.Iss)
	if err != nil {
		return Decoded{}, fmt.Errorf("resolving issuer: %w", err)
	}
	code := signature.NameCode(header.Alg)
	if code == signature.NonStandard || code != issuer.SignatureCode() {
		return Decoded{}, failure.New(
			ErrAlgorithmMismatch,
			"expected signature algorithm %q got %q",
			issuer.SignatureAlgorithm(), header.Alg,
		)
	}

	audience, err := did.Parse(payload.Aud)
	if err != nil {
		return Decoded{}, fmt.Errorf("parsing audience: %w", err)
	}

	var proofs []ipld.Link
	for _, p := range payload.Prf {
		l, err := ipld.ParseLink(p)
		if err != nil {
			return Decoded{}, fmt.Errorf("parsing proof %q: %w", p, err)
		}
		proofs = append(proofs, l)
	}

	raw, err := formatter.ParseSignature(segments[2])
	if err != nil {
		return Decoded{}, err
	}

	a, err := artifacts(token, signature.NewSignature(code, raw))
	if err != nil {
		return Decoded{}, err
	}

	return Decoded{
		Header:    header,
		Payload:   payload,
		Issuer:    issuer,
		Audience:  audience,
		Proofs:    proofs,
		Artifacts: a,
	}, nil
}
