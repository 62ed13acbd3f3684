package signer

import (
	"crypto/ed25519"
	"testing"

	"github.com/ipvm-wg/go-ucan-agent/testing/helpers"
	"github.com/stretchr/testify/require"
)

func TestGenerateEncodeDecode(t *testing.T) {
	s0 := helpers.Must(Generate())
	s1 := helpers.Must(Decode(s0.Encode()))
	require.Equal(t, s0.DID().String(), s1.DID().String())
}

func TestGenerateFormatParse(t *testing.T) {
	s0 := helpers.Must(Generate())

	str := helpers.Must(Format(s0))
	s1 := helpers.Must(Parse(str))
	require.Equal(t, s0.DID().String(), s1.DID().String())

	exported := helpers.Must(s0.Export())
	require.Equal(t, str, exported)
}

func TestParseKnownKey(t *testing.T) {
	s := helpers.Must(Parse("MgCZT5vOnYZoVAeyjnzuJIVY9J4LNtJ+f8Js0cTPuKUpFne0BVEDJjEu6quFIU8yp91/TY/+MYK8GvlKoTDnqOCovCVM="))
	require.Equal(t, "did:key:z6Mkk89bC3JrVqKie71YEcc5M1SMVxuCgNx6zLZ8SYJsxALi", s.DID().String())
}

func TestDecodeInvalid(t *testing.T) {
	t.Run("length", func(t *testing.T) {
		_, err := Decode([]byte{1, 2, 3})
		require.Error(t, err)
	})

	t.Run("mismatched public key", func(t *testing.T) {
		a := helpers.Must(Generate()).Encode()
		b := helpers.Must(Generate()).Encode()
		mixed := append(append([]byte{}, a[:pubKeyOffset]...), b[pubKeyOffset:]...)
		_, err := Decode(mixed)
		require.Error(t, err)
	})
}

func TestFromSeed(t *testing.T) {
	seed := helpers.RandomBytes(32)
	s0 := helpers.Must(FromSeed(seed))
	s1 := helpers.Must(FromSeed(seed))
	require.Equal(t, s0.DID(), s1.DID())

	_, err := FromSeed(seed[:16])
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	s0 := helpers.Must(Generate())

	msg := []byte("testy")
	sig := helpers.Must(s0.Sign(msg))

	require.True(t, s0.Verifier().Verify(msg, sig))
	require.True(t, sig.Verify(msg, s0.Verifier()))

	other := helpers.Must(Generate())
	require.False(t, other.Verifier().Verify(msg, sig))
}

func TestSignerRaw(t *testing.T) {
	s := helpers.Must(Generate())

	msg := []byte{1, 2, 3}
	raw := s.Raw()
	sig := ed25519.Sign(raw, msg)

	require.Equal(t, helpers.Must(s.Sign(msg)).Raw(), sig)
}
