package signature

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-varint"
)

// Signature algorithm codes as used in the IPLD representation of UCANs.
const (
	NonStandard = 0xd000
	ES256K      = 0xd0e7
	EdDSA       = 0xd0ed
	ES256       = 0xd01200
	ES384       = 0xd01201
	ES512       = 0xd01202
	RS256       = 0xd01205
)

// JWT algorithm names.
const (
	ES256KName = "ES256K"
	EdDSAName  = "EdDSA"
	ES256Name  = "ES256"
	ES384Name  = "ES384"
	ES512Name  = "ES512"
	RS256Name  = "RS256"
)

var codeNames = map[uint64]string{
	ES256K: ES256KName,
	EdDSA:  EdDSAName,
	ES256:  ES256Name,
	ES384:  ES384Name,
	ES512:  ES512Name,
	RS256:  RS256Name,
}

var nameCodes = func() map[string]uint64 {
	m := make(map[string]uint64, len(codeNames))
	for c, n := range codeNames {
		m[n] = c
	}
	return m
}()

// CodeName returns the JWT algorithm name of a signature code.
func CodeName(code uint64) (string, error) {
	name, ok := codeNames[code]
	if !ok {
		return "", fmt.Errorf("unknown signature algorithm code 0x%x", code)
	}
	return name, nil
}

// NameCode returns the signature code of a JWT algorithm name. Unknown names
// map to NonStandard.
func NameCode(name string) uint64 {
	code, ok := nameCodes[name]
	if !ok {
		return NonStandard
	}
	return code
}

type Signature interface {
	Code() uint64
	Size() uint64
	Bytes() []byte
	// Raw signature (without signature algorithm info).
	Raw() []byte
}

func NewSignature(code uint64, raw []byte) Signature {
	cl := varint.UvarintSize(code)
	rl := varint.UvarintSize(uint64(len(raw)))
	sig := make(signature, cl+rl+len(raw))
	varint.PutUvarint(sig, code)
	varint.PutUvarint(sig[cl:], uint64(len(raw)))
	copy(sig[cl+rl:], raw)
	return sig
}

type signature []byte

func (s signature) Code() uint64 {
	c, _ := varint.ReadUvarint(bytes.NewReader(s))
	return c
}

func (s signature) Size() uint64 {
	n, _ := varint.ReadUvarint(bytes.NewReader(s[varint.UvarintSize(s.Code()):]))
	return n
}

func (s signature) Raw() []byte {
	cl := varint.UvarintSize(s.Code())
	rl := varint.UvarintSize(s.Size())
	return s[cl+rl:]
}

func (s signature) Bytes() []byte {
	return s
}

type SignatureView interface {
	Signature
	// Verify that the signature was produced by the given message.
	Verify(msg []byte, signer Verifier) bool
}

func NewSignatureView(s Signature) SignatureView {
	return signatureView(signature(s.Bytes()))
}

type signatureView signature

func (v signatureView) Bytes() []byte {
	return signature(v).Bytes()
}

func (v signatureView) Code() uint64 {
	return signature(v).Code()
}

func (v signatureView) Raw() []byte {
	return signature(v).Raw()
}

func (v signatureView) Size() uint64 {
	return signature(v).Size()
}

func (v signatureView) Verify(msg []byte, signer Verifier) bool {
	return signer.Verify(msg, v)
}
