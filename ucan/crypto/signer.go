package crypto

import (
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
)

type Signer interface {
	DID() did.DID
	// Takes byte encoded message and produces a verifiable signature.
	Sign(msg []byte) (signature.SignatureView, error)
	// SignatureCode is the signature algorithm code, see the signature
	// package.
	SignatureCode() uint64
	// SignatureAlgorithm is the JWT "alg" of signatures produced by this
	// signer.
	SignatureAlgorithm() string
}
