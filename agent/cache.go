package agent

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ipvm-wg/go-ucan-agent/ucan"
)

var ProofCacheSize = 100

// proofCache holds parsed proofs keyed by CID string so that repeated
// delegations do not parse every stored token again.
type proofCache struct {
	data *lru.Cache[string, ucan.View]
}

func (c *proofCache) Get(cid string) (ucan.View, bool) {
	return c.data.Get(cid)
}

func (c *proofCache) Put(u ucan.View) {
	c.data.Add(u.Link().String(), u)
}

// newProofCache creates an LRU of the given size. Pass a value less than 1
// to use ProofCacheSize.
func newProofCache(size int) (*proofCache, error) {
	if size <= 0 {
		size = ProofCacheSize
	}
	cache, err := lru.New[string, ucan.View](size)
	if err != nil {
		return nil, fmt.Errorf("creating proof LRU: %w", err)
	}
	return &proofCache{data: cache}, nil
}
