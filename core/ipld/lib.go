package ipld

import (
	"github.com/ipfs/go-cid"
	"github.com/ipld/go-ipld-prime"
	cidlink "github.com/ipld/go-ipld-prime/linking/cid"
	"github.com/ipvm-wg/go-ucan-agent/core/ipld/block"
)

type Link = ipld.Link
type Block = block.Block

// ParseLink parses a CID string into a Link.
func ParseLink(str string) (Link, error) {
	c, err := cid.Parse(str)
	if err != nil {
		return nil, err
	}
	return cidlink.Link{Cid: c}, nil
}

// LinkCid returns the CID of a link, or cid.Undef if the link is not CID
// based.
func LinkCid(l Link) cid.Cid {
	if cl, ok := l.(cidlink.Link); ok {
		return cl.Cid
	}
	c, err := cid.Parse(l.String())
	if err != nil {
		return cid.Undef
	}
	return c
}
