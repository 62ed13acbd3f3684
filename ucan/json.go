package ucan

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ipld/go-ipld-prime"
	"github.com/ipld/go-ipld-prime/codec/dagjson"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

type jsonView struct {
	Issuer       string            `json:"issuer"`
	Audience     string            `json:"audience"`
	Version      string            `json:"version"`
	Capabilities Capabilities      `json:"capabilities"`
	Expiration   *UTCUnixTimestamp `json:"expiration"`
	NotBefore    *UTCUnixTimestamp `json:"notBefore,omitempty"`
	Nonce        string            `json:"nonce,omitempty"`
	Facts        Facts             `json:"facts,omitempty"`
	Proofs       []json.RawMessage `json:"proofs,omitempty"`
	Signature    string            `json:"signature"`
	UCAN         string            `json:"ucan"`
	Bytes        string            `json:"bytes"`
	CID          json.RawMessage   `json:"cid"`
}

// linkJSON encodes a link in the DAG-JSON form {"/": "<cid>"}.
func linkJSON(l Link) (json.RawMessage, error) {
	b, err := ipld.Encode(basicnode.NewLink(l), dagjson.Encode)
	if err != nil {
		return nil, fmt.Errorf("encoding link %s: %w", l, err)
	}
	return b, nil
}

// MarshalJSON returns a JSON safe snapshot of the token, including the
// derived artifacts.
func (v *ucanView) MarshalJSON() ([]byte, error) {
	out := jsonView{
		Issuer:       v.Issuer().DID().String(),
		Audience:     v.Audience().String(),
		Version:      v.Version(),
		Capabilities: v.Capabilities(),
		Expiration:   v.Expiration(),
		Nonce:        v.Nonce(),
		Facts:        v.Facts(),
		Signature:    base64.StdEncoding.EncodeToString(v.Signature().Raw()),
		UCAN:         v.String(),
		Bytes:        string(v.Bytes()),
	}
	if nbf := v.NotBefore(); nbf != 0 {
		out.NotBefore = &nbf
	}
	for _, p := range v.Proofs() {
		b, err := linkJSON(p)
		if err != nil {
			return nil, err
		}
		out.Proofs = append(out.Proofs, b)
	}
	c, err := linkJSON(v.Link())
	if err != nil {
		return nil, err
	}
	out.CID = c
	return json.Marshal(out)
}
