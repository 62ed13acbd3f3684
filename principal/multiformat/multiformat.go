package multiformat

import (
	"fmt"

	"github.com/multiformats/go-varint"
)

func TagWith(code uint64, bytes []byte) []byte {
	offset := varint.UvarintSize(code)
	tagged := make([]byte, len(bytes)+offset)
	varint.PutUvarint(tagged, code)
	copy(tagged[offset:], bytes)
	return tagged
}

func UntagWith(code uint64, source []byte, offset int) ([]byte, error) {
	b := source
	if offset != 0 {
		b = source[offset:]
	}

	tag, n, err := varint.FromUvarint(b)
	if err != nil {
		return nil, err
	}

	if tag != code {
		return nil, fmt.Errorf("expected multiformat with 0x%x tag instead got 0x%x", code, tag)
	}

	return b[n:], nil
}

// Tag reads the multicodec tag at the start of b.
func Tag(b []byte) (uint64, error) {
	tag, _, err := varint.FromUvarint(b)
	if err != nil {
		return 0, fmt.Errorf("reading multiformat tag: %w", err)
	}
	return tag, nil
}
