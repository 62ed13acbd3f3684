package car

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	"github.com/ipld/go-car/util"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipvm-wg/go-ucan-agent/core/ipld"
	"github.com/ipvm-wg/go-ucan-agent/core/ipld/block"
)

// ContentType is the value the HTTP Content-Type header should have for CARs.
// See https://www.iana.org/assignments/media-types/application/vnd.ipld.car
const ContentType = "application/vnd.ipld.car"

func init() {
	cbor.RegisterCborType(carHeader{})
}

type carHeader struct {
	Roots   []cid.Cid
	Version uint64
}

// Write encodes a CAR v1 archive of the passed roots and blocks to w.
func Write(w io.Writer, roots []ipld.Link, blocks iter.Seq2[ipld.Block, error]) error {
	h := carHeader{Version: 1}
	for _, r := range roots {
		c := ipld.LinkCid(r)
		if !c.Defined() {
			return fmt.Errorf("root is not a CID: %s", r)
		}
		h.Roots = append(h.Roots, c)
	}
	hb, err := cbor.DumpObject(h)
	if err != nil {
		return fmt.Errorf("writing CAR header: %w", err)
	}
	if err := util.LdWrite(w, hb); err != nil {
		return fmt.Errorf("writing CAR header: %w", err)
	}
	for b, err := range blocks {
		if err != nil {
			return fmt.Errorf("writing CAR blocks: %w", err)
		}
		if err := util.LdWrite(w, []byte(b.Link().Binary()), b.Bytes()); err != nil {
			return fmt.Errorf("writing CAR blocks: %w", err)
		}
	}
	return nil
}

// Encode returns a reader over a CAR v1 archive that is written on demand.
func Encode(roots []ipld.Link, blocks iter.Seq2[ipld.Block, error]) io.Reader {
	reader, writer := io.Pipe()
	go func() {
		writer.CloseWithError(Write(writer, roots, blocks))
	}()
	return reader
}

// Decode reads the CAR header and returns the roots and an iterator over the
// blocks. Each block is checked against the hash in its CID.
func Decode(reader io.Reader) ([]ipld.Link, iter.Seq2[ipld.Block, error], error) {
	br := bufio.NewReader(reader)

	hb, err := util.LdRead(br)
	if err != nil {
		return nil, nil, err
	}

	var ch carHeader
	if err := cbor.DecodeInto(hb, &ch); err != nil {
		return nil, nil, fmt.Errorf("invalid header: %v", err)
	}

	if ch.Version != 1 {
		return nil, nil, fmt.Errorf("invalid car version: %d", ch.Version)
	}

	var roots []ipld.Link
	for _, r := range ch.Roots {
		roots = append(roots, cidlink.Link{Cid: r})
	}

	return roots, func(yield func(ipld.Block, error) bool) {
		for {
			c, bytes, err := util.ReadNode(br)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				yield(nil, err)
				return
			}

			b := block.NewBlock(cidlink.Link{Cid: c}, bytes)
			if err := block.Verify(b); err != nil {
				yield(nil, fmt.Errorf("mismatch in content integrity: %w", err))
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}, nil
}
