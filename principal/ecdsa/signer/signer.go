package signer

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/go-jose/go-jose/v4"
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/principal/ecdsa/verifier"
	"github.com/ipvm-wg/go-ucan-agent/principal/multiformat"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/multiformats/go-multibase"
)

const Name = verifier.Name

// Generate a key pair on the given curve.
func Generate(curve verifier.Curve) (principal.Signer, error) {
	priv, err := ecdsa.GenerateKey(curve.Elliptic, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating %s key: %w", curve.Name, err)
	}
	return FromPrivateKey(priv)
}

// FromPrivateKey wraps an existing private key.
func FromPrivateKey(priv *ecdsa.PrivateKey) (principal.Signer, error) {
	curve, err := verifier.CurveOf(priv.Curve)
	if err != nil {
		return nil, err
	}
	verif, err := verifier.FromPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	d := make([]byte, curve.ByteSize())
	priv.D.FillBytes(d)
	return ecdsasigner{
		bytes:    multiformat.TagWith(curve.PrivateCode, d),
		curve:    curve,
		privKey:  priv,
		verifier: verif,
	}, nil
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

// Decode a multicodec tagged private scalar.
func Decode(b []byte) (principal.Signer, error) {
	code, err := multiformat.Tag(b)
	if err != nil {
		return nil, err
	}
	curve, err := verifier.CurveByCode(code)
	if err != nil {
		return nil, err
	}
	if code != curve.PrivateCode {
		return nil, fmt.Errorf("expected %s private key, got codec 0x%x", curve.Name, code)
	}
	raw, err := multiformat.UntagWith(code, b, 0)
	if err != nil {
		return nil, err
	}
	if len(raw) != curve.ByteSize() {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(raw), curve.ByteSize())
	}

	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 || d.Cmp(curve.Elliptic.Params().N) >= 0 {
		return nil, fmt.Errorf("invalid %s private key", curve.Name)
	}
	priv := &ecdsa.PrivateKey{D: d}
	priv.Curve = curve.Elliptic
	priv.X, priv.Y = curve.Elliptic.ScalarBaseMult(raw)

	return FromPrivateKey(priv)
}

// ImportJWK reads a private key exported with Export.
func ImportJWK(str string) (principal.Signer, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON([]byte(str)); err != nil {
		return nil, fmt.Errorf("parsing JWK: %w", err)
	}
	priv, ok := jwk.Key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("JWK is not an ECDSA private key: %T", jwk.Key)
	}
	return FromPrivateKey(priv)
}

type ecdsasigner struct {
	bytes    []byte
	curve    verifier.Curve
	privKey  *ecdsa.PrivateKey
	verifier principal.Verifier
}

func (s ecdsasigner) Code() uint64 {
	return s.curve.PrivateCode
}

func (s ecdsasigner) SignatureCode() uint64 {
	return s.curve.SignatureCode
}

func (s ecdsasigner) SignatureAlgorithm() string {
	return s.curve.Algorithm
}

func (s ecdsasigner) Verifier() principal.Verifier {
	return s.verifier
}

func (s ecdsasigner) DID() did.DID {
	return s.verifier.DID()
}

func (s ecdsasigner) Encode() []byte {
	return s.bytes
}

func (s ecdsasigner) Raw() []byte {
	b, _ := multiformat.UntagWith(s.curve.PrivateCode, s.bytes, 0)
	return b
}

// Export the private key as a JWK, keyed by the signer DID.
func (s ecdsasigner) Export() (string, error) {
	jwk := jose.JSONWebKey{
		Key:       s.privKey,
		KeyID:     s.DID().String(),
		Algorithm: s.curve.Algorithm,
		Use:       "sig",
	}
	b, err := jwk.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encoding JWK: %w", err)
	}
	return string(b), nil
}

func (s ecdsasigner) Sign(msg []byte) (signature.SignatureView, error) {
	r, ss, err := ecdsa.Sign(rand.Reader, s.privKey, s.curve.Digest(msg))
	if err != nil {
		return nil, fmt.Errorf("signing with %s key: %w", s.curve.Name, err)
	}
	n := s.curve.ByteSize()
	sig := make([]byte, 2*n)
	r.FillBytes(sig[:n])
	ss.FillBytes(sig[n:])
	return signature.NewSignatureView(signature.NewSignature(s.curve.SignatureCode, sig)), nil
}
