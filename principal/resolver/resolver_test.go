package resolver

import (
	"testing"

	"github.com/ipvm-wg/go-ucan-agent/testing/helpers"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/varsig"
	"github.com/stretchr/testify/require"
)

func TestGenerateImport(t *testing.T) {
	for _, alg := range Algorithms() {
		t.Run(alg, func(t *testing.T) {
			s0 := helpers.Must(Generate(alg))
			require.Equal(t, alg, s0.SignatureAlgorithm())

			exported := helpers.Must(s0.Export())
			s1 := helpers.Must(Import(alg, exported))
			require.Equal(t, s0.DID(), s1.DID())
		})
	}
}

func TestImportForeign(t *testing.T) {
	ed := helpers.Must(Generate(signature.EdDSAName))
	exported := helpers.Must(ed.Export())

	_, err := Import(signature.RS256Name, exported)
	require.Error(t, err)

	_, err = Import(signature.ES256KName, exported)
	require.Error(t, err)

	p256 := helpers.Must(Generate(signature.ES256Name))
	_, err = Import(signature.ES384Name, helpers.Must(p256.Export()))
	require.Error(t, err)
}

func TestUnsupported(t *testing.T) {
	_, err := Generate("HS256")
	require.ErrorIs(t, err, varsig.ErrUnsupportedAlgorithm)
	_, err = Import("HS256", "")
	require.ErrorIs(t, err, varsig.ErrUnsupportedAlgorithm)
}

func TestVerify(t *testing.T) {
	msg := []byte("testy")

	t.Run("default accepts every algorithm", func(t *testing.T) {
		for _, alg := range Algorithms() {
			s := helpers.Must(Generate(alg))
			ok, err := Default().Verify(s.Verifier(), msg, helpers.Must(s.Sign(msg)))
			require.NoError(t, err)
			require.True(t, ok, alg)
		}
	})

	t.Run("bad signature", func(t *testing.T) {
		s := helpers.Must(Generate(signature.EdDSAName))
		other := helpers.Must(Generate(signature.EdDSAName))
		ok, err := Default().Verify(s.Verifier(), msg, helpers.Must(other.Sign(msg)))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("signature code differs from issuer", func(t *testing.T) {
		s := helpers.Must(Generate(signature.EdDSAName))
		sig := helpers.Must(s.Sign(msg))
		relabelled := signature.NewSignature(signature.ES256, sig.Raw())
		ok, err := Default().Verify(s.Verifier(), msg, relabelled)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("disallowed algorithm", func(t *testing.T) {
		s := helpers.Must(Generate(signature.ES256KName))
		_, err := New(signature.EdDSAName).Verify(s.Verifier(), msg, helpers.Must(s.Sign(msg)))
		require.ErrorIs(t, err, varsig.ErrUnsupportedAlgorithm)
	})
}
