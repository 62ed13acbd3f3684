package agent

import (
	"context"
	"fmt"
	"io"

	"github.com/ipvm-wg/go-ucan-agent/core/car"
	"github.com/ipvm-wg/go-ucan-agent/core/ipld"
	"github.com/ipvm-wg/go-ucan-agent/ucan"
)

// ExportProofs writes every proof the agent holds to w as a CAR archive.
// Each proof is a root and a raw block of the token bytes.
func (a *Agent) ExportProofs(ctx context.Context, w io.Writer) error {
	store, err := a.Proofs(ctx)
	if err != nil {
		return err
	}
	blocks := func(yield func(ipld.Block, error) bool) {
		for u := range store.All() {
			if !yield(u.Block(), nil) {
				return
			}
		}
	}
	if err := car.Write(w, store.Links(), blocks); err != nil {
		return fmt.Errorf("exporting proofs: %w", err)
	}
	return nil
}

// ImportProofs reads a CAR archive written by ExportProofs and saves the
// proofs in it. Nothing is saved if any block fails to verify or parse.
func (a *Agent) ImportProofs(ctx context.Context, r io.Reader) ([]ucan.View, error) {
	_, blocks, err := car.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("reading proofs archive: %w", err)
	}
	var proofs []ucan.View
	for b, err := range blocks {
		if err != nil {
			return nil, fmt.Errorf("reading proofs archive: %w", err)
		}
		u, err := ucan.Parse(string(b.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("parsing proof %s: %w", b.Link(), err)
		}
		if u.Link().String() != b.Link().String() {
			return nil, fmt.Errorf("proof block %s is not a raw token block", b.Link())
		}
		proofs = append(proofs, u)
	}
	if err := a.SaveProofs(ctx, proofs...); err != nil {
		return nil, err
	}
	a.logger.Info("imported proofs", "count", len(proofs))
	return proofs, nil
}
