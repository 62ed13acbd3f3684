// Package varsig encodes and decodes varsig headers: a self describing
// varint sequence naming the signature algorithm (with its hash and size
// parameters) and the encoding of the signed payload.
package varsig

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/ipvm-wg/go-ucan-agent/core/result/failure"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-varint"
)

// Tag is the varsig multicodec code, the first varint of every header.
const Tag = 0x34

const (
	ErrUnsupportedHeader    = failure.Kind("UnsupportedHeader")
	ErrUnsupportedAlgorithm = failure.Kind("UnsupportedAlgorithm")
	ErrUnsupportedEncoding  = failure.Kind("UnsupportedEncoding")
	ErrHeaderMismatch       = failure.Kind("HeaderMismatch")
)

// Algorithm is a JWT signature algorithm name.
type Algorithm string

const (
	EdDSA  = Algorithm("EdDSA")
	RS256  = Algorithm("RS256")
	ES256  = Algorithm("ES256")
	ES384  = Algorithm("ES384")
	ES512  = Algorithm("ES512")
	ES256K = Algorithm("ES256K")
)

// Encoding is the encoding of the payload a signature was made over.
type Encoding string

const (
	Raw     = Encoding("RAW")
	DagPB   = Encoding("DAG-PB")
	DagCBOR = Encoding("DAG-CBOR")
	DagJSON = Encoding("DAG-JSON")
	JWT     = Encoding("JWT")
)

// Varsig encoding codes for payloads that have no multicodec of their own.
const (
	rawCode = 0x5f
	jwtCode = 0x6a77
)

// rsaModulusSize is the RS256 key size in bytes, included in its header.
const rsaModulusSize = 256

type Header struct {
	Algorithm Algorithm
	Encoding  Encoding
}

func uvarints(codes ...uint64) []byte {
	var out []byte
	for _, c := range codes {
		out = append(out, varint.ToUvarint(c)...)
	}
	return out
}

// algorithms maps each algorithm to its key multicodec and the varints that
// follow the varsig tag.
var algorithms = map[Algorithm]struct {
	code   uint64
	prefix []byte
}{
	EdDSA:  {uint64(multicodec.Ed25519Pub), uvarints(uint64(multicodec.Ed25519Pub))},
	RS256:  {uint64(multicodec.RsaPub), uvarints(uint64(multicodec.RsaPub), uint64(multicodec.Sha2_256), rsaModulusSize)},
	ES256:  {uint64(multicodec.P256Pub), uvarints(uint64(multicodec.P256Pub), uint64(multicodec.Sha2_256))},
	ES384:  {uint64(multicodec.P384Pub), uvarints(uint64(multicodec.P384Pub), uint64(multicodec.Sha2_384))},
	ES512:  {uint64(multicodec.P521Pub), uvarints(uint64(multicodec.P521Pub), uint64(multicodec.Sha2_512))},
	ES256K: {uint64(multicodec.Secp256k1Pub), uvarints(uint64(multicodec.Secp256k1Pub), uint64(multicodec.Sha2_256))},
}

var codeAlgorithms = func() map[uint64]Algorithm {
	m := make(map[uint64]Algorithm, len(algorithms))
	for alg, a := range algorithms {
		m[a.code] = alg
	}
	return m
}()

var encodings = map[Encoding]uint64{
	Raw:     rawCode,
	DagPB:   uint64(multicodec.DagPb),
	DagCBOR: uint64(multicodec.DagCbor),
	DagJSON: uint64(multicodec.DagJson),
	JWT:     jwtCode,
}

var codeEncodings = func() map[uint64]Encoding {
	m := make(map[uint64]Encoding, len(encodings))
	for enc, c := range encodings {
		m[c] = enc
	}
	return m
}()

// Algorithms lists the supported algorithms.
func Algorithms() []Algorithm {
	return []Algorithm{EdDSA, RS256, ES256, ES384, ES512, ES256K}
}

// Encodings lists the supported payload encodings.
func Encodings() []Encoding {
	return []Encoding{Raw, DagPB, DagCBOR, DagJSON, JWT}
}

// Encode the varsig header for the algorithm and payload encoding.
func Encode(alg Algorithm, enc Encoding) ([]byte, error) {
	e, ok := encodings[enc]
	if !ok {
		return nil, failure.New(ErrUnsupportedEncoding, "unsupported encoding %s", enc)
	}
	a, ok := algorithms[alg]
	if !ok {
		return nil, failure.New(ErrUnsupportedAlgorithm, "unsupported algorithm %s", alg)
	}
	out := varint.ToUvarint(Tag)
	out = append(out, a.prefix...)
	return append(out, varint.ToUvarint(e)...), nil
}

// Decode a varsig header. The algorithm is identified by its key code and
// the remaining algorithm parameters must match exactly.
func Decode(b []byte) (Header, error) {
	tag, n, err := varint.FromUvarint(b)
	if err != nil || tag != Tag {
		return Header{}, failure.New(ErrUnsupportedHeader, "missing varsig tag 0x%x", Tag)
	}

	code, _, err := varint.FromUvarint(b[n:])
	if err != nil {
		return Header{}, failure.Wrap(ErrUnsupportedAlgorithm, err, "reading algorithm code")
	}
	alg, ok := codeAlgorithms[code]
	if !ok {
		return Header{}, failure.New(ErrUnsupportedAlgorithm, "unsupported algorithm with code 0x%x", code)
	}

	expected := append(varint.ToUvarint(Tag), algorithms[alg].prefix...)
	actual := b[:min(len(expected), len(b))]
	if !bytes.Equal(actual, expected) {
		return Header{}, failure.New(
			ErrHeaderMismatch,
			"header 0x%s does not match expected 0x%s for %s",
			hex.EncodeToString(actual), hex.EncodeToString(expected), alg,
		)
	}

	ec, _, err := varint.FromUvarint(b[len(expected):])
	if err != nil {
		return Header{}, failure.Wrap(ErrUnsupportedEncoding, err, "reading encoding code")
	}
	enc, ok := codeEncodings[ec]
	if !ok {
		return Header{}, failure.New(ErrUnsupportedEncoding, "unsupported encoding 0x%x", ec)
	}

	return Header{Algorithm: alg, Encoding: enc}, nil
}

func (h Header) String() string {
	return fmt.Sprintf("%s+%s", h.Algorithm, h.Encoding)
}
