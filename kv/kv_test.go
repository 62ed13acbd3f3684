package kv_test

import (
	"context"
	"testing"

	"github.com/ipvm-wg/go-ucan-agent/kv"
	"github.com/ipvm-wg/go-ucan-agent/kv/memory"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	k := kv.Key{"proofs", "bafy"}
	require.Equal(t, "proofs/bafy", k.String())
	require.NoError(t, k.Validate())
	require.True(t, k.HasPrefix(kv.Key{"proofs"}))
	require.True(t, k.HasPrefix(nil))
	require.False(t, k.HasPrefix(kv.Key{"signer"}))
	require.False(t, kv.Key{"proofs"}.HasPrefix(k))
	require.Equal(t, k, kv.ParseKey(k.String()))

	for _, bad := range []kv.Key{nil, {""}, {"a", ""}, {"a/b"}} {
		require.Error(t, bad.Validate(), bad)
	}
}

func TestValue(t *testing.T) {
	type record struct {
		Name  string
		Count int
		Tags  []string
	}
	ctx := context.Background()
	s := memory.New()

	in := record{Name: "alice", Count: 3, Tags: []string{"a", "b"}}
	require.NoError(t, kv.SetValue(ctx, s, kv.Key{"record"}, in))

	out, ok, err := kv.GetValue[record](ctx, s, kv.Key{"record"})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)

	_, ok, err = kv.GetValue[record](ctx, s, kv.Key{"absent"})
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, kv.Key{"junk"}, []byte{0xff}))
	_, _, err = kv.GetValue[record](ctx, s, kv.Key{"junk"})
	require.Error(t, err)
}
