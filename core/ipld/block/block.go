package block

import (
	"bytes"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipvm-wg/go-ucan-agent/core/ipld/hash"
	"github.com/multiformats/go-multicodec"
	"github.com/multiformats/go-multihash"
)

// Raw is the multicodec code for raw binary blocks.
const Raw = uint64(multicodec.Raw)

type Block interface {
	Link() ipld.Link
	Bytes() []byte
}

type block struct {
	link  ipld.Link
	bytes []byte
}

func (b *block) Link() ipld.Link {
	return b.link
}

func (b *block) Bytes() []byte {
	return b.bytes
}

// NewBlock pairs a link with bytes without checking that they correspond.
func NewBlock(link ipld.Link, bytes []byte) Block {
	return &block{link, bytes}
}

// Encode hashes the bytes and returns a block addressed by a CIDv1 with the
// given codec.
func Encode(bytes []byte, codec uint64, hasher hash.Hasher) (Block, error) {
	digest, err := hasher.Sum(bytes)
	if err != nil {
		return nil, fmt.Errorf("hashing block: %w", err)
	}
	c := cid.NewCidV1(codec, multihash.Multihash(digest.Bytes()))
	return NewBlock(cidlink.Link{Cid: c}, bytes), nil
}

// Verify checks the block bytes hash to the multihash in its link.
func Verify(b Block) error {
	cl, ok := b.Link().(cidlink.Link)
	if !ok {
		return fmt.Errorf("unsupported link type: %T", b.Link())
	}
	want := cl.Cid.Hash()
	got, err := cl.Cid.Prefix().Sum(b.Bytes())
	if err != nil {
		return fmt.Errorf("hashing block: %w", err)
	}
	if !bytes.Equal(want, got.Hash()) {
		return fmt.Errorf("block bytes do not match %s", cl.Cid)
	}
	return nil
}
