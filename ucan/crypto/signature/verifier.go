package signature

import "github.com/ipvm-wg/go-ucan-agent/did"

type Verifier interface {
	DID() did.DID
	// Takes byte encoded message and verifies that it is signed by corresponding
	// signer.
	Verify(msg []byte, sig Signature) bool
}
