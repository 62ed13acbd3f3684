// Package bip39 derives an Ed25519 identity from a BIP-39 mnemonic.
package bip39

import (
	"fmt"

	"github.com/ipvm-wg/go-ucan-agent/did"
	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/principal/ed25519/signer"
	"github.com/ipvm-wg/go-ucan-agent/ucan"
	"github.com/tyler-smith/go-bip39"
)

// EntropyBits is the entropy of generated mnemonics, 12 words.
const EntropyBits = 128

type Identifier struct {
	mnemonic string
	signer   principal.Signer
}

// Generate a new mnemonic and the identity it derives with password.
func Generate(password string) (*Identifier, error) {
	entropy, err := bip39.NewEntropy(EntropyBits)
	if err != nil {
		return nil, fmt.Errorf("generating entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("generating mnemonic: %w", err)
	}
	return Import(mnemonic, password)
}

// Import derives the identity of a mnemonic. The key is the first 32 bytes
// of the BIP-39 seed, used as an Ed25519 seed.
func Import(mnemonic string, password string) (*Identifier, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, password)
	if err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	s, err := signer.FromSeed(seed[:32])
	if err != nil {
		return nil, err
	}
	return &Identifier{mnemonic: mnemonic, signer: s}, nil
}

// Export returns the mnemonic.
func (id *Identifier) Export() string {
	return id.mnemonic
}

func (id *Identifier) Signer() principal.Signer {
	return id.signer
}

func (id *Identifier) DID() did.DID {
	return id.signer.DID()
}

// Delegate issues a UCAN signed by the identity.
func (id *Identifier) Delegate(audience ucan.Principal, capabilities ucan.Capabilities, options ...ucan.Option) (ucan.View, error) {
	return ucan.Issue(id.signer, audience, capabilities, options...)
}

func (id *Identifier) String() string {
	return id.signer.DID().String()
}
