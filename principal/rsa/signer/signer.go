package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/principal/multiformat"
	"github.com/ipvm-wg/go-ucan-agent/principal/rsa/verifier"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
)

const Code = uint64(multicodec.RsaPriv)
const Name = verifier.Name

const SignatureCode = verifier.SignatureCode
const SignatureAlgorithm = verifier.SignatureAlgorithm

// RS256 varsig headers declare a 256 byte modulus.
const keySize = 2048

func Generate() (principal.Signer, error) {
	priv, err := rsa.GenerateKey(rand.Reader, keySize)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}
	return fromPrivateKey(priv, multiformat.TagWith(Code, x509.MarshalPKCS1PrivateKey(priv)))
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
	utb, err := multiformat.UntagWith(Code, b, 0)
	if err != nil {
		return nil, err
	}

	priv, err := x509.ParsePKCS1PrivateKey(utb)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	return fromPrivateKey(priv, b)
}

func fromPrivateKey(priv *rsa.PrivateKey, encoded []byte) (principal.Signer, error) {
	// the verifier is derived from the public key as it backs DID()
	verif, err := verifier.FromRaw(x509.MarshalPKCS1PublicKey(&priv.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("decoding public bytes: %w", err)
	}
	return rsasigner{bytes: encoded, privKey: priv, verifier: verif}, nil
}

type rsasigner struct {
	bytes    []byte
	privKey  *rsa.PrivateKey
	verifier principal.Verifier
}

func (s rsasigner) Code() uint64 {
	return Code
}

func (s rsasigner) SignatureCode() uint64 {
	return SignatureCode
}

func (s rsasigner) SignatureAlgorithm() string {
	return SignatureAlgorithm
}

func (s rsasigner) Verifier() principal.Verifier {
	return s.verifier
}

func (s rsasigner) DID() did.DID {
	return s.verifier.DID()
}

func (s rsasigner) Encode() []byte {
	return s.bytes
}

func (s rsasigner) Raw() []byte {
	b, _ := multiformat.UntagWith(Code, s.bytes, 0)
	return b
}

func (s rsasigner) Export() (string, error) {
	return Format(s)
}

func (s rsasigner) Sign(msg []byte) (signature.SignatureView, error) {
	digest := sha256.Sum256(msg)
	sig, err := rsa.SignPKCS1v15(nil, s.privKey, crypto.SHA256, digest[:])
	if err != nil {
		return nil, fmt.Errorf("signing with RSA key: %w", err)
	}
	return signature.NewSignatureView(signature.NewSignature(SignatureCode, sig)), nil
}
