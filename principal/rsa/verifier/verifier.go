package verifier

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/principal/multiformat"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/multiformats/go-multicodec"
)

const Code = uint64(multicodec.RsaPub)
const Name = "RSA"

const SignatureCode = signature.RS256
const SignatureAlgorithm = signature.RS256Name

func Parse(str string) (principal.Verifier, error) {
	id, err := did.Parse(str)
	if err != nil {
		return nil, fmt.Errorf("parsing DID: %w", err)
	}
	return Decode(id.Bytes())
}

func Decode(b []byte) (principal.Verifier, error) {
	utb, err := multiformat.UntagWith(Code, b, 0)
	if err != nil {
		return nil, err
	}

	pub, err := x509.ParsePKCS1PublicKey(utb)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}

	return rsaverifier{bytes: b, pubKey: pub}, nil
}

// FromRaw takes PKCS#1 DER encoded public key bytes and tags them with the
// RSA public key multiformat code.
func FromRaw(b []byte) (principal.Verifier, error) {
	return Decode(multiformat.TagWith(Code, b))
}

type rsaverifier struct {
	bytes  []byte
	pubKey *rsa.PublicKey
}

func (v rsaverifier) Code() uint64 {
	return Code
}

func (v rsaverifier) SignatureCode() uint64 {
	return SignatureCode
}

func (v rsaverifier) SignatureAlgorithm() string {
	return SignatureAlgorithm
}

func (v rsaverifier) Verify(msg []byte, sig signature.Signature) bool {
	if sig.Code() != SignatureCode {
		return false
	}
	digest := sha256.Sum256(msg)
	err := rsa.VerifyPKCS1v15(v.pubKey, crypto.SHA256, digest[:], sig.Raw())
	return err == nil
}

func (v rsaverifier) DID() did.DID {
	id, _ := did.Decode(v.bytes)
	return id
}

func (v rsaverifier) Encode() []byte {
	return v.bytes
}

func (v rsaverifier) Raw() []byte {
	b, _ := multiformat.UntagWith(Code, v.bytes, 0)
	return b
}
