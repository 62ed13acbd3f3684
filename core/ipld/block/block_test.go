package block

import (
	"testing"

	"github.com/ipfs/go-cid"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipvm-wg/go-ucan-agent/core/ipld/hash/sha256"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	b, err := Encode([]byte("hello"), Raw, sha256.Hasher)
	require.NoError(t, err)

	c := b.Link().(cidlink.Link).Cid
	require.Equal(t, uint64(1), c.Version())
	require.Equal(t, uint64(cid.Raw), c.Type())
	require.Equal(t, []byte("hello"), b.Bytes())
	require.NoError(t, Verify(b))

	again, err := Encode([]byte("hello"), Raw, sha256.Hasher)
	require.NoError(t, err)
	require.Equal(t, b.Link().String(), again.Link().String())
}

func TestVerify(t *testing.T) {
	b, err := Encode([]byte("hello"), Raw, sha256.Hasher)
	require.NoError(t, err)

	tampered := NewBlock(b.Link(), []byte("jello"))
	require.Error(t, Verify(tampered))
}
