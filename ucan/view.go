package ucan

import (
	"slices"
	"time"

	"github.com/ipvm-wg/go-ucan-agent/core/ipld"
	"github.com/ipvm-wg/go-ucan-agent/core/ipld/block"
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/varsig"
	hdm "github.com/ipvm-wg/go-ucan-agent/ucan/datamodel/header"
	pdm "github.com/ipvm-wg/go-ucan-agent/ucan/datamodel/payload"
	"github.com/ipvm-wg/go-ucan-agent/ucan/jwt"
)

type UCAN interface {
	// Issuer is the signer of the UCAN.
	Issuer() principal.Verifier
	// Audience is the principal delegated to.
	Audience() did.DID
	// Version is the UCAN version the token conforms to.
	Version() string
	// Capabilities are claimed abilities that can be performed on a resource.
	Capabilities() Capabilities
	// Expiration is the time in seconds since the Unix epoch that the UCAN
	// becomes invalid. Nil means it never expires.
	Expiration() *UTCUnixTimestamp
	// NotBefore is the time in seconds since the Unix epoch that the UCAN
	// becomes valid. Zero when unset.
	NotBefore() UTCUnixTimestamp
	// Nonce is an opaque string making otherwise identical tokens distinct.
	Nonce() string
	// Facts are arbitrary facts and proofs of knowledge.
	Facts() Facts
	// Proofs of delegation.
	Proofs() []Link
	// Signature of the UCAN issuer.
	Signature() signature.SignatureView
}

// View represents a decoded "view" of a UCAN that can be used in your
// domain logic, etc.
type View interface {
	UCAN
	// Bytes is the UTF-8 encoding of the JWT.
	Bytes() []byte
	// String is the JWT.
	String() string
	// Link is the CIDv1 (raw, sha2-256) of Bytes.
	Link() Link
	Block() ipld.Block
	// SignedPayload is the header.payload part of the JWT.
	SignedPayload() []byte
	// Varsig is the varsig header describing the token signature.
	Varsig() ([]byte, error)
	// IsValid verifies the signature and checks the time bounds against the
	// current time.
	IsValid(resolver Resolver) (bool, error)
	// Header references the decoded JWT header.
	Header() hdm.HeaderModel
	// Model references the decoded JWT payload.
	Model() pdm.PayloadModel
	MarshalJSON() ([]byte, error)
}

type ucanView struct {
	decoded jwt.Decoded
}

var _ View = (*ucanView)(nil)

func headerOf(s crypto.Signer) hdm.HeaderModel {
	return hdm.HeaderModel{Alg: s.SignatureAlgorithm(), Typ: hdm.Type}
}

func (v *ucanView) Issuer() principal.Verifier {
	return v.decoded.Issuer
}

func (v *ucanView) Audience() did.DID {
	return v.decoded.Audience
}

func (v *ucanView) Version() string {
	return v.decoded.Payload.Ucv
}

// Capabilities returns a copy of the claimed capabilities.
func (v *ucanView) Capabilities() Capabilities {
	return cloneCapabilities(v.decoded.Payload.Cap)
}

func (v *ucanView) Expiration() *UTCUnixTimestamp {
	if v.decoded.Payload.Exp == nil {
		return nil
	}
	exp := *v.decoded.Payload.Exp
	return &exp
}

func (v *ucanView) NotBefore() UTCUnixTimestamp {
	return v.decoded.Payload.Nbf
}

func (v *ucanView) Nonce() string {
	return v.decoded.Payload.Nnc
}

func (v *ucanView) Facts() Facts {
	return cloneFacts(v.decoded.Payload.Fct)
}

func (v *ucanView) Proofs() []Link {
	return cloneLinks(v.decoded.Proofs)
}

func (v *ucanView) Signature() signature.SignatureView {
	sig := v.decoded.Signature
	return signature.NewSignatureView(signature.NewSignature(sig.Code(), sig.Raw()))
}

func (v *ucanView) Bytes() []byte {
	return slices.Clone(v.decoded.Bytes)
}

func (v *ucanView) String() string {
	return v.decoded.Token
}

func (v *ucanView) Link() Link {
	return v.decoded.Link
}

func (v *ucanView) Block() ipld.Block {
	return block.NewBlock(v.decoded.Link, v.Bytes())
}

func (v *ucanView) SignedPayload() []byte {
	return slices.Clone(v.decoded.SignedPayload())
}

func (v *ucanView) Varsig() ([]byte, error) {
	return varsig.Encode(varsig.Algorithm(v.decoded.Header.Alg), varsig.JWT)
}

func (v *ucanView) IsValid(resolver Resolver) (bool, error) {
	return IsValidAt(v, resolver, time.Now())
}

func (v *ucanView) Header() hdm.HeaderModel {
	return v.decoded.Header
}

// Model returns a copy of the decoded payload.
func (v *ucanView) Model() pdm.PayloadModel {
	m := v.decoded.Payload
	m.Cap = cloneCapabilities(m.Cap)
	m.Fct = cloneFacts(m.Fct)
	m.Prf = slices.Clone(m.Prf)
	m.Exp = v.Expiration()
	return m
}
