package signer

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/principal/multiformat"
	"github.com/ipvm-wg/go-ucan-agent/principal/secp256k1/verifier"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
)

const Code = uint64(multicodec.Secp256k1Priv)
const Name = verifier.Name

const SignatureCode = verifier.SignatureCode
const SignatureAlgorithm = verifier.SignatureAlgorithm

const keySize = secp256k1.PrivKeyBytesLen

func Generate() (principal.Signer, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generating secp256k1 key: %w", err)
	}
	return FromPrivateKey(priv), nil
}

func FromPrivateKey(priv *secp256k1.PrivateKey) principal.Signer {
	return secp256k1signer{
		bytes:    multiformat.TagWith(Code, priv.Serialize()),
		privKey:  priv,
		verifier: verifier.FromPublicKey(priv.PubKey()),
	}
}

func Parse(str string) (principal.Signer, error) {
	_, bytes, err := multibase.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("decoding multibase string: %w", err)
	}
	return Decode(bytes)
}

func Format(signer principal.Signer) (string, error) {
	return multibase.Encode(multibase.Base64pad, signer.Encode())
}

func Decode(b []byte) (principal.Signer, error) {
	raw, err := multiformat.UntagWith(Code, b, 0)
	if err != nil {
		return nil, err
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(raw), keySize)
	}
	var k secp256k1.ModNScalar
	if overflow := k.SetByteSlice(raw); overflow || k.IsZero() {
		return nil, fmt.Errorf("invalid secp256k1 private key")
	}
	return FromPrivateKey(secp256k1.NewPrivateKey(&k)), nil
}

type secp256k1signer struct {
	bytes    []byte
	privKey  *secp256k1.PrivateKey
	verifier principal.Verifier
}

func (s secp256k1signer) Code() uint64 {
	return Code
}

func (s secp256k1signer) SignatureCode() uint64 {
	return SignatureCode
}

func (s secp256k1signer) SignatureAlgorithm() string {
	return SignatureAlgorithm
}

func (s secp256k1signer) Verifier() principal.Verifier {
	return s.verifier
}

func (s secp256k1signer) DID() did.DID {
	return s.verifier.DID()
}

func (s secp256k1signer) Encode() []byte {
	return s.bytes
}

func (s secp256k1signer) Raw() []byte {
	return s.privKey.Serialize()
}

func (s secp256k1signer) Export() (string, error) {
	return Format(s)
}

func (s secp256k1signer) Sign(msg []byte) (signature.SignatureView, error) {
	digest := sha256.Sum256(msg)
	// compact signatures are recovery byte || r || s
	compact := ecdsa.SignCompact(s.privKey, digest[:], true)
	return signature.NewSignatureView(signature.NewSignature(SignatureCode, compact[1:])), nil
}
