package signer

import (
	"encoding/json"
	"testing"

	"github.com/ipvm-wg/go-ucan-agent/principal/ecdsa/verifier"
	"github.com/ipvm-wg/go-ucan-agent/testing/helpers"
	"github.com/stretchr/testify/require"
)

func TestGenerateEncodeDecode(t *testing.T) {
	for _, curve := range verifier.Curves() {
		t.Run(curve.Name, func(t *testing.T) {
			s0 := helpers.Must(Generate(curve))
			s1 := helpers.Must(Decode(s0.Encode()))
			require.Equal(t, s0.DID(), s1.DID())
			require.Equal(t, s0.Raw(), s1.Raw())

			s2 := helpers.Must(Parse(helpers.Must(Format(s0))))
			require.Equal(t, s0.DID(), s2.DID())
		})
	}
}

func TestSignVerify(t *testing.T) {
	for _, curve := range verifier.Curves() {
		t.Run(curve.Name, func(t *testing.T) {
			s := helpers.Must(Generate(curve))
			msg := []byte("testy")
			sig := helpers.Must(s.Sign(msg))
			require.Len(t, sig.Raw(), 2*curve.ByteSize())
			require.Equal(t, curve.SignatureCode, sig.Code())
			require.True(t, s.Verifier().Verify(msg, sig))

			other := helpers.Must(Generate(curve))
			require.False(t, other.Verifier().Verify(msg, sig))
		})
	}
}

func TestExportJWK(t *testing.T) {
	s0 := helpers.Must(Generate(verifier.P256))
	exported := helpers.Must(s0.Export())

	var jwk map[string]any
	require.NoError(t, json.Unmarshal([]byte(exported), &jwk))
	require.Equal(t, "EC", jwk["kty"])
	require.Equal(t, "P-256", jwk["crv"])
	require.Equal(t, "ES256", jwk["alg"])
	require.Equal(t, s0.DID().String(), jwk["kid"])
	require.Contains(t, jwk, "d")

	s1 := helpers.Must(ImportJWK(exported))
	require.Equal(t, s0.DID(), s1.DID())
	require.Equal(t, s0.Encode(), s1.Encode())
}

func TestImportJWKInvalid(t *testing.T) {
	_, err := ImportJWK("not json")
	require.Error(t, err)

	// public only
	pub := `{"kty":"EC","crv":"P-256","x":"f83OJ3D2xF1Bg8vub9tLe1gHMzV76e8Tus9uPHvRVEU","y":"x_FEzRu9m36HLN_tue659LNpXW6pCyStikYjKIWI5a0"}`
	_, err = ImportJWK(pub)
	require.Error(t, err)
}

func TestDecodeInvalid(t *testing.T) {
	// zero scalar
	_, err := Decode(append([]byte{0x86, 0x26}, make([]byte, 32)...))
	require.Error(t, err)

	// public key tag
	_, err = Decode(append([]byte{0x80, 0x24}, make([]byte, 33)...))
	require.Error(t, err)
}
