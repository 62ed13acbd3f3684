package principal

import (
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto"
)

// Signer is a key pair that can issue UCANs and be persisted by an agent.
type Signer interface {
	crypto.Signer
	// Code is the multicodec of the private key.
	Code() uint64
	Verifier() Verifier
	// Encode returns the multicodec tagged private key.
	Encode() []byte
	// Raw returns the private key in the form used by the underlying crypto
	// library.
	Raw() []byte
	// Export returns a string from which an identical signer can be imported.
	Export() (string, error)
}

// Verifier is the public half of a Signer, identified by a did:key.
type Verifier interface {
	crypto.Verifier
	// Code is the multicodec of the public key.
	Code() uint64
	// Encode returns the multicodec tagged public key.
	Encode() []byte
	Raw() []byte
}

// Parser resolves a DID string to a verifier.
type Parser interface {
	Parse(did string) (Verifier, error)
}
