package agent

import (
	"context"

	"github.com/ipvm-wg/go-ucan-agent/principal"
	"github.com/ipvm-wg/go-ucan-agent/principal/resolver"
)

// AlgorithmResolver generates a signer for alg on first run and imports the
// persisted one afterwards. An export made for another algorithm fails.
func AlgorithmResolver(alg string) SignerResolver {
	return func(ctx context.Context, exported string) (principal.Signer, error) {
		if exported == "" {
			return resolver.Generate(alg)
		}
		return resolver.Import(alg, exported)
	}
}
