// Package verifier implements ES256K verifiers over secp256k1 public keys.
package verifier

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/principal/multiformat"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/multiformats/go-multicodec"
)

const Code = uint64(multicodec.Secp256k1Pub)
const Name = "secp256k1"

const SignatureCode = signature.ES256K
const SignatureAlgorithm = signature.ES256KName

// scalarSize is the size of r and s in a signature.
const scalarSize = 32

func Parse(str string) (principal.Verifier, error) {
	id, err := did.Parse(str)
	if err != nil {
		return nil, fmt.Errorf("parsing DID: %w", err)
	}
	return Decode(id.Bytes())
}

func Decode(b []byte) (principal.Verifier, error) {
	raw, err := multiformat.UntagWith(Code, b, 0)
	if err != nil {
		return nil, err
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	// did:key always uses the compressed form
	return FromPublicKey(pub), nil
}

func FromPublicKey(pub *secp256k1.PublicKey) principal.Verifier {
	return secp256k1verifier{
		bytes:  multiformat.TagWith(Code, pub.SerializeCompressed()),
		pubKey: pub,
	}
}

type secp256k1verifier struct {
	bytes  []byte
	pubKey *secp256k1.PublicKey
}

func (v secp256k1verifier) Code() uint64 {
	return Code
}

func (v secp256k1verifier) SignatureCode() uint64 {
	return SignatureCode
}

func (v secp256k1verifier) SignatureAlgorithm() string {
	return SignatureAlgorithm
}

// Verify checks a 64 byte r||s signature over the SHA-256 digest of msg.
func (v secp256k1verifier) Verify(msg []byte, sig signature.Signature) bool {
	if sig.Code() != SignatureCode {
		return false
	}
	raw := sig.Raw()
	if len(raw) != 2*scalarSize {
		return false
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(raw[:scalarSize]); overflow {
		return false
	}
	if overflow := s.SetByteSlice(raw[scalarSize:]); overflow {
		return false
	}
	digest := sha256.Sum256(msg)
	return ecdsa.NewSignature(&r, &s).Verify(digest[:], v.pubKey)
}

func (v secp256k1verifier) DID() did.DID {
	id, _ := did.Decode(v.bytes)
	return id
}

func (v secp256k1verifier) Encode() []byte {
	return v.bytes
}

func (v secp256k1verifier) Raw() []byte {
	b, _ := multiformat.UntagWith(Code, v.bytes, 0)
	return b
}
