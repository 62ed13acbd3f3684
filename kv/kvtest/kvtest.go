// Package kvtest checks the behaviour shared by every kv.KV implementation.
package kvtest

import (
	"context"
	"testing"
	"time"

	"github.com/ipvm-wg/go-ucan-agent/core/clock"
	"github.com/ipvm-wg/go-ucan-agent/kv"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s kv.KV, prefix kv.Key) []kv.Entry {
	t.Helper()
	var entries []kv.Entry
	for e, err := range s.List(context.Background(), prefix) {
		require.NoError(t, err)
		entries = append(entries, e)
	}
	return entries
}

func keys(entries []kv.Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Key.String())
	}
	return out
}

// Run exercises a store created by open with a clock it should use.
func Run(t *testing.T, open func(t *testing.T, c clock.Clock) kv.KV) {
	ctx := context.Background()

	t.Run("get set delete", func(t *testing.T) {
		s := open(t, clock.Real())
		k := kv.Key{"signer"}

		_, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, s.Set(ctx, k, []byte("one")))
		v, ok, err := s.Get(ctx, k)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte("one"), v)

		require.NoError(t, s.Set(ctx, k, []byte("two")))
		v, _, err = s.Get(ctx, k)
		require.NoError(t, err)
		require.Equal(t, []byte("two"), v)

		require.NoError(t, s.Delete(ctx, k))
		_, ok, err = s.Get(ctx, k)
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, s.Delete(ctx, k))
	})

	t.Run("invalid key", func(t *testing.T) {
		s := open(t, clock.Real())
		require.Error(t, s.Set(ctx, kv.Key{"a/b"}, nil))
		_, _, err := s.Get(ctx, kv.Key{})
		require.Error(t, err)
	})

	t.Run("list prefix", func(t *testing.T) {
		s := open(t, clock.Real())
		for _, k := range []kv.Key{{"proofs", "b"}, {"proofs", "a"}, {"signer"}, {"proofs0"}, {"proofs-x"}, {"proofs"}} {
			require.NoError(t, s.Set(ctx, k, []byte(k.String())))
		}

		entries := collect(t, s, kv.Key{"proofs"})
		require.Equal(t, []string{"proofs", "proofs/a", "proofs/b"}, keys(entries))
		require.Equal(t, []byte("proofs/a"), entries[1].Value)
		require.Equal(t, kv.Key{"proofs", "a"}, entries[1].Key)

		require.Len(t, collect(t, s, nil), 6)
		require.Empty(t, collect(t, s, kv.Key{"nope"}))
	})

	t.Run("expiration", func(t *testing.T) {
		now := time.Unix(1_700_000_000, 0)
		clk := clock.Fake(now)
		s := open(t, clk)

		exp := now.Unix() + 10
		require.NoError(t, s.Set(ctx, kv.Key{"proofs", "short"}, []byte("x"), kv.WithExpiration(exp)))
		require.NoError(t, s.Set(ctx, kv.Key{"proofs", "forever"}, []byte("y")))

		v, ok, err := s.Get(ctx, kv.Key{"proofs", "short"})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte("x"), v)

		entries := collect(t, s, kv.Key{"proofs"})
		require.Len(t, entries, 2)
		for _, e := range entries {
			if e.Key[1] == "short" {
				require.NotNil(t, e.Expiration)
				require.Equal(t, exp, *e.Expiration)
			} else {
				require.Nil(t, e.Expiration)
			}
		}

		clk.Advance(10 * time.Second)

		_, ok, err = s.Get(ctx, kv.Key{"proofs", "short"})
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, []string{"proofs/forever"}, keys(collect(t, s, kv.Key{"proofs"})))
	})

	t.Run("stop early", func(t *testing.T) {
		s := open(t, clock.Real())
		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, s.Set(ctx, kv.Key{"n", k}, nil))
		}
		n := 0
		for _, err := range s.List(ctx, kv.Key{"n"}) {
			require.NoError(t, err)
			n++
			if n == 2 {
				break
			}
		}
		require.Equal(t, 2, n)
	})
}
