package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/principal/ed25519/verifier"
	"github.com/ipvm-wg/go-ucan-agent/principal/multiformat"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-varint"
)

const Code = uint64(multicodec.Ed25519Priv)
const Name = verifier.Name

const SignatureCode = verifier.SignatureCode
const SignatureAlgorithm = verifier.SignatureAlgorithm

var privateTagSize = varint.UvarintSize(Code)
var publicTagSize = varint.UvarintSize(verifier.Code)

const keySize = 32

var size = privateTagSize + keySize + publicTagSize + keySize
var pubKeyOffset = privateTagSize + keySize

func Generate() (principal.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating Ed25519 key: %w", err)
	}
	return FromRaw(priv)
}

// FromSeed derives the signer deterministically from a 32 byte seed.
func FromSeed(seed []byte) (principal.Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid seed length: %d wanted: %d", len(seed), ed25519.SeedSize)
	}
	return FromRaw(ed25519.NewKeyFromSeed(seed))
}

// FromRaw takes a raw ed25519 private key (seed followed by public key) and
// tags the halves with their multiformat codes.
func FromRaw(priv []byte) (principal.Signer, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(priv), ed25519.PrivateKeySize)
	}
	s := make(Ed25519Signer, size)
	varint.PutUvarint(s, Code)
	copy(s[privateTagSize:], priv[:keySize])
	varint.PutUvarint(s[pubKeyOffset:], verifier.Code)
	copy(s[pubKeyOffset+publicTagSize:], priv[keySize:])
	return s, nil
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
	if len(b) != size {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(b), size)
	}

	if _, err := multiformat.UntagWith(Code, b, 0); err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	pub, err := verifier.Decode(b[pubKeyOffset:])
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}

	// the stored public key must belong to the private key
	derived := ed25519.NewKeyFromSeed(b[privateTagSize:pubKeyOffset]).Public().(ed25519.PublicKey)
	if !derived.Equal(ed25519.PublicKey(pub.Raw())) {
		return nil, fmt.Errorf("public key does not match private key")
	}

	s := make(Ed25519Signer, size)
	copy(s, b)

	return s, nil
}

type Ed25519Signer []byte

func (s Ed25519Signer) Code() uint64 {
	return Code
}

func (s Ed25519Signer) SignatureCode() uint64 {
	return SignatureCode
}

func (s Ed25519Signer) SignatureAlgorithm() string {
	return SignatureAlgorithm
}

func (s Ed25519Signer) Verifier() principal.Verifier {
	return verifier.Ed25519Verifier(s[pubKeyOffset:])
}

func (s Ed25519Signer) DID() did.DID {
	id, _ := did.Decode(s[pubKeyOffset:])
	return id
}

func (s Ed25519Signer) Encode() []byte {
	return s
}

func (s Ed25519Signer) Raw() []byte {
	pk := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	copy(pk[0:keySize], s[privateTagSize:pubKeyOffset])
	copy(pk[keySize:], s[pubKeyOffset+publicTagSize:])
	return pk
}

func (s Ed25519Signer) Export() (string, error) {
	return Format(s)
}

func (s Ed25519Signer) Sign(msg []byte) (signature.SignatureView, error) {
	sig := ed25519.Sign(ed25519.PrivateKey(s.Raw()), msg)
	return signature.NewSignatureView(signature.NewSignature(SignatureCode, sig)), nil
}
