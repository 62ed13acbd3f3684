package verifier

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ipvm-wg/go-ucan-agent/testing/helpers"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	v := FromPublicKey(priv.PubKey())
	parsed := helpers.Must(Parse(v.DID().String()))
	require.Equal(t, v.DID(), parsed.DID())
	require.Equal(t, priv.PubKey().SerializeCompressed(), parsed.Raw())
}

func TestDecodeUncompressed(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	uncompressed := append([]byte{0xe7, 0x01}, priv.PubKey().SerializeUncompressed()...)
	v := helpers.Must(Decode(uncompressed))
	require.Equal(t, FromPublicKey(priv.PubKey()).DID(), v.DID())
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte{0xed, 0x01, 1, 2})
	require.Error(t, err)
	_, err = Decode(append([]byte{0xe7, 0x01}, make([]byte, 33)...))
	require.Error(t, err)
}
