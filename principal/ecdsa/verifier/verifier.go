// Package verifier implements NIST curve ECDSA verifiers (ES256, ES384 and
// ES512) identified by did:key with a compressed public point.
package verifier

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/principal/multiformat"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/multiformats/go-multicodec"
)

const Name = "ECDSA"

// Curve binds an elliptic curve to its multicodecs, JWT algorithm and digest.
type Curve struct {
	Name          string
	Algorithm     string
	PublicCode    uint64
	PrivateCode   uint64
	SignatureCode uint64
	Hash          crypto.Hash
	Elliptic      elliptic.Curve
}

// ByteSize is the size of a scalar, and of each half of a signature.
func (c Curve) ByteSize() int {
	return (c.Elliptic.Params().BitSize + 7) / 8
}

// Digest hashes msg with the curve's hash function.
func (c Curve) Digest(msg []byte) []byte {
	h := c.Hash.New()
	h.Write(msg)
	return h.Sum(nil)
}

var (
	P256 = Curve{
		Name:          "P-256",
		Algorithm:     signature.ES256Name,
		PublicCode:    uint64(multicodec.P256Pub),
		PrivateCode:   0x1306,
		SignatureCode: signature.ES256,
		Hash:          crypto.SHA256,
		Elliptic:      elliptic.P256(),
	}
	P384 = Curve{
		Name:          "P-384",
		Algorithm:     signature.ES384Name,
		PublicCode:    uint64(multicodec.P384Pub),
		PrivateCode:   0x1307,
		SignatureCode: signature.ES384,
		Hash:          crypto.SHA384,
		Elliptic:      elliptic.P384(),
	}
	P521 = Curve{
		Name:          "P-521",
		Algorithm:     signature.ES512Name,
		PublicCode:    uint64(multicodec.P521Pub),
		PrivateCode:   0x1308,
		SignatureCode: signature.ES512,
		Hash:          crypto.SHA512,
		Elliptic:      elliptic.P521(),
	}
)

// Curves lists the supported curves.
func Curves() []Curve {
	return []Curve{P256, P384, P521}
}

// CurveByCode finds the curve with the given public or private key code.
func CurveByCode(code uint64) (Curve, error) {
	for _, c := range Curves() {
		if c.PublicCode == code || c.PrivateCode == code {
			return c, nil
		}
	}
	return Curve{}, fmt.Errorf("unsupported ECDSA key codec: 0x%x", code)
}

// CurveByAlgorithm finds the curve for a JWT algorithm name.
func CurveByAlgorithm(alg string) (Curve, error) {
	for _, c := range Curves() {
		if c.Algorithm == alg {
			return c, nil
		}
	}
	return Curve{}, fmt.Errorf("unsupported ECDSA algorithm: %s", alg)
}

// CurveOf finds the curve matching an elliptic.Curve.
func CurveOf(ec elliptic.Curve) (Curve, error) {
	for _, c := range Curves() {
		if c.Elliptic.Params().Name == ec.Params().Name {
			return c, nil
		}
	}
	return Curve{}, fmt.Errorf("unsupported curve: %s", ec.Params().Name)
}

func Parse(str string) (principal.Verifier, error) {
	id, err := did.Parse(str)
	if err != nil {
		return nil, fmt.Errorf("parsing DID: %w", err)
	}
	return Decode(id.Bytes())
}

// Decode a multicodec tagged compressed public point.
func Decode(b []byte) (principal.Verifier, error) {
	code, err := multiformat.Tag(b)
	if err != nil {
		return nil, err
	}
	curve, err := CurveByCode(code)
	if err != nil {
		return nil, err
	}
	if code != curve.PublicCode {
		return nil, fmt.Errorf("expected %s public key, got codec 0x%x", curve.Name, code)
	}
	raw, err := multiformat.UntagWith(code, b, 0)
	if err != nil {
		return nil, err
	}
	x, y := elliptic.UnmarshalCompressed(curve.Elliptic, raw)
	if x == nil {
		return nil, fmt.Errorf("invalid %s public key", curve.Name)
	}
	return ecdsaverifier{
		bytes:  b,
		curve:  curve,
		pubKey: &ecdsa.PublicKey{Curve: curve.Elliptic, X: x, Y: y},
	}, nil
}

// FromPublicKey creates a verifier for the public key.
func FromPublicKey(pub *ecdsa.PublicKey) (principal.Verifier, error) {
	curve, err := CurveOf(pub.Curve)
	if err != nil {
		return nil, err
	}
	raw := elliptic.MarshalCompressed(pub.Curve, pub.X, pub.Y)
	return ecdsaverifier{
		bytes:  multiformat.TagWith(curve.PublicCode, raw),
		curve:  curve,
		pubKey: pub,
	}, nil
}

type ecdsaverifier struct {
	bytes  []byte
	curve  Curve
	pubKey *ecdsa.PublicKey
}

func (v ecdsaverifier) Code() uint64 {
	return v.curve.PublicCode
}

func (v ecdsaverifier) SignatureCode() uint64 {
	return v.curve.SignatureCode
}

func (v ecdsaverifier) SignatureAlgorithm() string {
	return v.curve.Algorithm
}

// Verify checks a fixed width r||s signature.
func (v ecdsaverifier) Verify(msg []byte, sig signature.Signature) bool {
	if sig.Code() != v.curve.SignatureCode {
		return false
	}
	raw := sig.Raw()
	n := v.curve.ByteSize()
	if len(raw) != 2*n {
		return false
	}
	r := new(big.Int).SetBytes(raw[:n])
	s := new(big.Int).SetBytes(raw[n:])
	return ecdsa.Verify(v.pubKey, v.curve.Digest(msg), r, s)
}

func (v ecdsaverifier) DID() did.DID {
	id, _ := did.Decode(v.bytes)
	return id
}

func (v ecdsaverifier) Encode() []byte {
	return v.bytes
}

func (v ecdsaverifier) Raw() []byte {
	b, _ := multiformat.UntagWith(v.curve.PublicCode, v.bytes, 0)
	return b
}
