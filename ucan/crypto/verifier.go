package crypto

import (
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
)

type Verifier interface {
	DID() did.DID
	// Takes byte encoded message and verifies that it is signed by corresponding
	// signer.
	Verify(msg []byte, sig signature.Signature) bool
	SignatureCode() uint64
	SignatureAlgorithm() string
}
