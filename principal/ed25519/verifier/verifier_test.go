package verifier

import (
	"crypto/ed25519"
	"testing"

	"github.com/ipvm-wg/go-ucan-agent/testing/helpers"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	str := "did:key:z6MkgZN5cRgWqesJeaZCEs7eKzyQsfpzmhnSEqTL6FZt56Ym"
	v, err := Parse(str)
	require.NoError(t, err)
	require.Equal(t, str, v.DID().String())
	require.Equal(t, "EdDSA", v.SignatureAlgorithm())
}

func TestParseWrongKeyType(t *testing.T) {
	// secp256k1 did:key
	_, err := Parse("did:key:zQ3shokFTS3brHcDQrn82RUDfCZESWL1ZdCEJwekUDPQiYBme")
	require.Error(t, err)
}

func TestFromRaw(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	v, err := FromRaw(pub)
	require.NoError(t, err)

	require.Equal(t, pub, ed25519.PublicKey(v.Raw()))
	require.Equal(t, v.DID(), helpers.Must(Decode(v.Encode())).DID())
}

func TestVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	v := helpers.Must(FromRaw(pub))

	msg := []byte("testy")
	sig := signature.NewSignature(signature.EdDSA, ed25519.Sign(priv, msg))
	require.True(t, v.Verify(msg, sig))
	require.False(t, v.Verify([]byte("other"), sig))

	wrongCode := signature.NewSignature(signature.ES256, sig.Raw())
	require.False(t, v.Verify(msg, wrongCode))
}
