package did

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const aliceKey = "did:key:z6Mkk89bC3JrVqKie71YEcc5M1SMVxuCgNx6zLZ8SYJsxALi"

func TestParse(t *testing.T) {
	t.Run("did:key", func(t *testing.T) {
		d, err := Parse(aliceKey)
		require.NoError(t, err)
		require.Equal(t, aliceKey, d.String())
		// ed25519-pub multicodec
		require.Equal(t, []byte{0xed, 0x01}, d.Bytes()[:2])
	})

	t.Run("did:web", func(t *testing.T) {
		d, err := Parse("did:web:ipvm.example")
		require.NoError(t, err)
		require.Equal(t, "did:web:ipvm.example", d.String())
		require.Equal(t, DIDCorePrefix, d.Bytes()[:len(DIDCorePrefix)])
	})

	t.Run("invalid", func(t *testing.T) {
		for _, str := range []string{"", "did", "did:", "did:key", "did::abc", "not-a-did", "did:key:!!!"} {
			_, err := Parse(str)
			require.Error(t, err, str)
		}
	})
}

func TestDecode(t *testing.T) {
	for _, str := range []string{aliceKey, "did:web:ipvm.example", "did:mailto:example.com:alice"} {
		t.Run(str, func(t *testing.T) {
			d0, err := Parse(str)
			require.NoError(t, err)
			d1, err := Decode(d0.Bytes())
			require.NoError(t, err)
			require.Equal(t, d0, d1)
		})
	}

	t.Run("empty core identifier", func(t *testing.T) {
		_, err := Decode(DIDCorePrefix)
		require.Error(t, err)
	})
}

func TestEquivalence(t *testing.T) {
	require.Equal(t, Undef, DID{})
	require.False(t, Undef.Defined())

	d0, err := Parse(aliceKey)
	require.NoError(t, err)
	d1, err := Parse(aliceKey)
	require.NoError(t, err)
	require.True(t, d0 == d1)
	require.Equal(t, d0, d0.DID())
}

func TestRoundtripJSON(t *testing.T) {
	id, err := Parse(aliceKey)
	require.NoError(t, err)

	type Object struct {
		ID                DID  `json:"id"`
		UndefID           DID  `json:"undef_id"`
		OptionalPresentID *DID `json:"optional_present_id"`
		OptionalAbsentID  *DID `json:"optional_absent_id"`
	}
	obj := Object{
		ID:                id,
		UndefID:           Undef,
		OptionalPresentID: &id,
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)

	var out Object
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, obj.ID, out.ID)
	require.Equal(t, obj.UndefID, out.UndefID)
	require.Equal(t, obj.OptionalPresentID.String(), out.OptionalPresentID.String())
	require.Nil(t, out.OptionalAbsentID)
}
