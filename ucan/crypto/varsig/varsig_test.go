package varsig

import (
	"testing"

	"github.com/multiformats/go-varint"
	"github.com/stretchr/testify/require"
)

func readVarints(t *testing.T, b []byte) []uint64 {
	t.Helper()
	var out []uint64
	for len(b) > 0 {
		v, n, err := varint.FromUvarint(b)
		require.NoError(t, err)
		out = append(out, v)
		b = b[n:]
	}
	return out
}

func TestEncode(t *testing.T) {
	t.Run("ES384 DAG-CBOR", func(t *testing.T) {
		out, err := Encode(ES384, DagCBOR)
		require.NoError(t, err)
		require.Equal(t, []uint64{Tag, 0x1201, 0x20, 0x71}, readVarints(t, out))
	})

	t.Run("RS256 DAG-CBOR", func(t *testing.T) {
		out, err := Encode(RS256, DagCBOR)
		require.NoError(t, err)
		require.Equal(t, []uint64{Tag, 0x1205, 0x12, 0x100, 0x71}, readVarints(t, out))
	})

	t.Run("byte tables", func(t *testing.T) {
		expected := map[Algorithm][]byte{
			EdDSA:  {237, 1},
			RS256:  {133, 36, 18, 128, 2},
			ES256K: {231, 1, 18},
			ES256:  {128, 36, 18},
			ES384:  {129, 36, 32},
			ES512:  {130, 36, 19},
		}
		for alg, prefix := range expected {
			out, err := Encode(alg, Raw)
			require.NoError(t, err)
			want := append([]byte{52}, prefix...)
			want = append(want, 95)
			require.Equal(t, want, out, alg)
		}

		out, err := Encode(EdDSA, JWT)
		require.NoError(t, err)
		require.Equal(t, []byte{52, 237, 1, 247, 212, 1}, out)

		out, err = Encode(EdDSA, DagJSON)
		require.NoError(t, err)
		require.Equal(t, []byte{52, 237, 1, 169, 2}, out)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := Encode("HS256", JWT)
		require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
		_, err = Encode(EdDSA, "CAR")
		require.ErrorIs(t, err, ErrUnsupportedEncoding)
	})
}

func TestRoundtrip(t *testing.T) {
	for _, alg := range Algorithms() {
		for _, enc := range Encodings() {
			t.Run(Header{alg, enc}.String(), func(t *testing.T) {
				out, err := Encode(alg, enc)
				require.NoError(t, err)
				h, err := Decode(out)
				require.NoError(t, err)
				require.Equal(t, Header{Algorithm: alg, Encoding: enc}, h)
			})
		}
	}
}

func TestDecode(t *testing.T) {
	t.Run("missing tag", func(t *testing.T) {
		_, err := Decode([]byte{0x35, 237, 1, 95})
		require.ErrorIs(t, err, ErrUnsupportedHeader)
		_, err = Decode(nil)
		require.ErrorIs(t, err, ErrUnsupportedHeader)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := Decode([]byte{52, 0x12, 95})
		require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
	})

	t.Run("sub field mismatch", func(t *testing.T) {
		out, err := Encode(RS256, JWT)
		require.NoError(t, err)
		// hash code sha2-256 -> sha2-512
		out[3] = 0x13
		_, err = Decode(out)
		require.ErrorIs(t, err, ErrHeaderMismatch)
		require.Contains(t, err.Error(), "RS256")
	})

	t.Run("truncated", func(t *testing.T) {
		out, err := Encode(ES256, JWT)
		require.NoError(t, err)
		_, err = Decode(out[:3])
		require.Error(t, err)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		_, err := Decode([]byte{52, 237, 1, 0x55})
		require.ErrorIs(t, err, ErrUnsupportedEncoding)
	})

	t.Run("raw", func(t *testing.T) {
		h, err := Decode([]byte{52, 237, 1, 0x5f})
		require.NoError(t, err)
		require.Equal(t, Header{Algorithm: EdDSA, Encoding: Raw}, h)
	})

	t.Run("tampered prefix", func(t *testing.T) {
		for _, alg := range Algorithms() {
			out, err := Encode(alg, JWT)
			require.NoError(t, err)
			prefix := 1 + len(algorithms[alg].prefix)
			for i := 0; i < prefix; i++ {
				tampered := append([]byte{}, out...)
				tampered[i] ^= 0xff
				_, err := Decode(tampered)
				require.Error(t, err, "%s byte %d", alg, i)
			}
		}
	})

	t.Run("tampered sub field", func(t *testing.T) {
		for _, alg := range Algorithms() {
			out, err := Encode(alg, JWT)
			require.NoError(t, err)
			code := varint.ToUvarint(algorithms[alg].code)
			// bytes after the tag and key code, up to the encoding
			for i := 1 + len(code); i < 1+len(algorithms[alg].prefix); i++ {
				tampered := append([]byte{}, out...)
				tampered[i] ^= 0x01
				_, err := Decode(tampered)
				require.ErrorIs(t, err, ErrHeaderMismatch, "%s byte %d", alg, i)
			}
		}
	})
}
