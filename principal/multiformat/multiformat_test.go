package multiformat

import (
	"testing"

	"github.com/ipvm-wg/go-ucan-agent/testing/helpers"
	"github.com/stretchr/testify/require"
)

func TestTag(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		b := []byte{1, 2, 3}
		tb := TagWith(0x1205, b)
		require.Equal(t, uint64(0x1205), helpers.Must(Tag(tb)))
		utb := helpers.Must(UntagWith(0x1205, tb, 0))
		require.EqualValues(t, b, utb)
	})

	t.Run("incorrect tag", func(t *testing.T) {
		b := []byte{1, 2, 3}
		tb := TagWith(1, b)
		_, err := UntagWith(2, tb, 0)
		require.Error(t, err)
		require.Equal(t, "expected multiformat with 0x2 tag instead got 0x1", err.Error())
	})

	t.Run("offset", func(t *testing.T) {
		tb := append([]byte{9, 9}, TagWith(0xed, []byte{7})...)
		require.EqualValues(t, []byte{7}, helpers.Must(UntagWith(0xed, tb, 2)))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Tag(nil)
		require.Error(t, err)
	})
}
