package ucan

import (
	"github.com/ipvm-wg/go-ucan-agent/core/ipld"
	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	pdm "github.com/ipvm-wg/go-ucan-agent/ucan/datamodel/payload"
)

// Version is the UCAN version of issued tokens.
const Version = "0.10.0"

// Resource is a string that represents resource a UCAN holder can act upon.
// It MUST have format `${string}:${string}`
type Resource = string

// Ability is a string that represents some action that a UCAN holder can do.
// It MUST have format `${string}/${string}` | "*"
type Ability = string

// Caveat is a free-form record constraining a capability.
type Caveat = map[string]any

// Capabilities maps each resource to the abilities granted on it, each with
// the list of caveats that apply.
type Capabilities = pdm.Capabilities

// Facts are arbitrary facts and proofs of knowledge. The enclosed data MUST
// be self-evident and externally verifiable.
type Facts = map[string]any

// Principal is a DID object representation with a `did` accessor for the DID.
type Principal interface {
	DID() did.DID
}

// Link is an IPLD link to UCAN data.
type Link = ipld.Link

// UTCUnixTimestamp is a timestamp in seconds since the Unix epoch.
type UTCUnixTimestamp = int64

// Resolver verifies an issuer's signature. Implementations decide which
// algorithms they accept, returning an error for any other.
type Resolver interface {
	Verify(issuer crypto.Verifier, msg []byte, sig signature.Signature) (bool, error)
}
