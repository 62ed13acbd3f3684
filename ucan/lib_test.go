package ucan

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/ipvm-wg/go-ucan-agent/core/clock"
	"github.com/ipvm-wg/go-ucan-agent/core/result/failure"
	"github.com/ipvm-wg/go-ucan-agent/principal/resolver"
	"github.com/ipvm-wg/go-ucan-agent/testing/fixtures"
	"github.com/ipvm-wg/go-ucan-agent/testing/helpers"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/varsig"
	"github.com/stretchr/testify/require"
)

var all = Capabilities{"ucan:*": {"*": {{}}}}

func TestIssue(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		u, err := Issue(fixtures.Alice, fixtures.Bob, all, WithNonce("a"), WithFacts(Facts{"hello": "world"}))
		require.NoError(t, err)

		p, err := Parse(u.String())
		require.NoError(t, err)
		require.Equal(t, u.String(), p.String())
		require.Equal(t, u.Link(), p.Link())
		require.Equal(t, fixtures.Alice.DID(), p.Issuer().DID())
		require.Equal(t, fixtures.Bob.DID(), p.Audience())
		require.Equal(t, Version, p.Version())
		require.Equal(t, "a", p.Nonce())
		require.Equal(t, "world", p.Facts()["hello"])
		require.Len(t, p.Capabilities()["ucan:*"]["*"], 1)
		require.Equal(t, u.Signature().Bytes(), p.Signature().Bytes())

		ok, err := p.IsValid(resolver.Default())
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("default expiration is never", func(t *testing.T) {
		u, err := Issue(fixtures.Alice, fixtures.Bob, all)
		require.NoError(t, err)
		require.Nil(t, u.Expiration())

		p, err := Parse(u.String())
		require.NoError(t, err)
		require.Nil(t, p.Expiration())
	})

	t.Run("explicit zero expiration", func(t *testing.T) {
		u, err := Issue(fixtures.Alice, fixtures.Bob, all, WithExpiration(0))
		require.NoError(t, err)
		require.NotNil(t, u.Expiration())
		require.Equal(t, int64(0), *u.Expiration())

		p, err := Parse(u.String())
		require.NoError(t, err)
		require.NotNil(t, p.Expiration())
		require.Equal(t, int64(0), *p.Expiration())
		require.False(t, IsExpired(p, time.Now()))
	})

	t.Run("ttl", func(t *testing.T) {
		now := time.Unix(1_700_000_000, 0)
		u, err := Issue(fixtures.Alice, fixtures.Bob, all, WithTTL(30*time.Second), WithClock(clock.Fake(now)))
		require.NoError(t, err)
		require.Equal(t, now.Unix()+30, *u.Expiration())
	})

	t.Run("explicit expiration wins over ttl", func(t *testing.T) {
		u, err := Issue(fixtures.Alice, fixtures.Bob, all, WithTTL(time.Hour), WithExpiration(42))
		require.NoError(t, err)
		require.Equal(t, int64(42), *u.Expiration())
	})

	t.Run("nil capabilities", func(t *testing.T) {
		u, err := Issue(fixtures.Alice, fixtures.Bob, nil)
		require.NoError(t, err)
		require.NotNil(t, u.Capabilities())
		require.Empty(t, u.Capabilities())
	})

	t.Run("invalid capability", func(t *testing.T) {
		_, err := Issue(fixtures.Alice, fixtures.Bob, Capabilities{"nocolon": {"*": {{}}}})
		require.ErrorIs(t, err, ErrInvalidCapability)
	})

	t.Run("negative ttl", func(t *testing.T) {
		_, err := Issue(fixtures.Alice, fixtures.Bob, all, WithTTL(-time.Second))
		require.Error(t, err)
	})
}

func TestImmutable(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r := resolver.Default()

	t.Run("accessors return copies", func(t *testing.T) {
		root, err := Issue(fixtures.Alice, fixtures.Bob, all)
		require.NoError(t, err)
		u, err := Issue(fixtures.Alice, fixtures.Bob, all,
			WithExpiration(now.Unix()-1),
			WithFacts(Facts{"nested": map[string]any{"k": "v"}}),
			WithProof(root.Link()),
		)
		require.NoError(t, err)

		ok, err := IsValidAt(u, r, now)
		require.NoError(t, err)
		require.False(t, ok)

		*u.Expiration() = math.MaxInt64
		u.Capabilities()["mailto:mallory@example.com"] = map[Ability][]Caveat{"*": {{}}}
		u.Capabilities()["ucan:*"]["*"][0]["extra"] = true
		u.Facts()["nested"].(map[string]any)["k"] = "changed"
		u.Proofs()[0] = helpers.RandomCID()
		u.Bytes()[0] = '!'
		u.SignedPayload()[0] = '!'
		u.Signature().Raw()[0] ^= 0xff

		ok, err = IsValidAt(u, r, now.Add(-time.Hour))
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = IsValidAt(u, r, now)
		require.NoError(t, err)
		require.False(t, ok)

		require.Equal(t, now.Unix()-1, *u.Expiration())
		require.Len(t, u.Capabilities(), 1)
		require.Empty(t, u.Capabilities()["ucan:*"]["*"][0])
		require.Equal(t, "v", u.Facts()["nested"].(map[string]any)["k"])
		require.Equal(t, []Link{root.Link()}, u.Proofs())
		require.Equal(t, u.String(), string(u.Bytes()))
	})

	t.Run("issue copies its inputs", func(t *testing.T) {
		caps := Capabilities{"ucan:*": {"*": {{}}}}
		facts := Facts{"hello": "world"}
		root, err := Issue(fixtures.Alice, fixtures.Bob, all)
		require.NoError(t, err)
		proofs := []Link{root.Link()}

		u, err := Issue(fixtures.Alice, fixtures.Bob, caps, WithFacts(facts), WithProofs(proofs))
		require.NoError(t, err)

		caps["mailto:mallory@example.com"] = map[Ability][]Caveat{"*": {{}}}
		caps["ucan:*"]["*"][0]["extra"] = true
		facts["hello"] = "mallory"
		proofs[0] = helpers.RandomCID()

		require.Len(t, u.Capabilities(), 1)
		require.Empty(t, u.Capabilities()["ucan:*"]["*"][0])
		require.Equal(t, "world", u.Facts()["hello"])
		require.Equal(t, []Link{root.Link()}, u.Proofs())
		require.Equal(t, u.Model().Cap, u.Capabilities())

		p, err := Parse(u.String())
		require.NoError(t, err)
		require.Equal(t, u.Capabilities(), p.Capabilities())
	})
}

func TestNonceAffectsLink(t *testing.T) {
	u0, err := Issue(fixtures.Alice, fixtures.Bob, all, WithNonce("x"))
	require.NoError(t, err)
	u1, err := Issue(fixtures.Alice, fixtures.Bob, all, WithNonce("x"))
	require.NoError(t, err)
	u2, err := Issue(fixtures.Alice, fixtures.Bob, all, WithNonce("y"))
	require.NoError(t, err)

	require.Equal(t, u0.Link(), u1.Link())
	require.NotEqual(t, u0.Link(), u2.Link())
}

func TestTimeBounds(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r := resolver.Default()

	t.Run("expires at exp", func(t *testing.T) {
		u, err := Issue(fixtures.Alice, fixtures.Bob, all, WithExpiration(now.Unix()))
		require.NoError(t, err)

		ok, err := IsValidAt(u, r, now.Add(-time.Second))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = IsValidAt(u, r, now)
		require.NoError(t, err)
		require.False(t, ok)
		require.True(t, IsExpired(u, now))
	})

	t.Run("not before", func(t *testing.T) {
		u, err := Issue(fixtures.Alice, fixtures.Bob, all, WithNotBefore(now.Unix()))
		require.NoError(t, err)

		require.True(t, IsTooEarly(u, now.Add(-time.Second)))
		ok, err := IsValidAt(u, r, now.Add(-time.Second))
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = IsValidAt(u, r, now)
		require.NoError(t, err)
		require.True(t, ok)
	})
}

func TestIsValid(t *testing.T) {
	u, err := Issue(fixtures.Alice, fixtures.Bob, all)
	require.NoError(t, err)

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := u.IsValid(resolver.New(signature.RS256Name))
		require.ErrorIs(t, err, varsig.ErrUnsupportedAlgorithm)
		var f failure.Failure
		require.ErrorAs(t, err, &f)
		require.Equal(t, "UnsupportedAlgorithm", f.Name())
	})

	t.Run("wrong signer", func(t *testing.T) {
		forged, err := Issue(fixtures.Mallory, fixtures.Bob, all)
		require.NoError(t, err)
		// alice's header and payload with mallory's signature
		token := string(u.SignedPayload()) + forged.String()[len(forged.SignedPayload()):]
		p, err := Parse(token)
		require.NoError(t, err)
		ok, err := p.IsValid(resolver.Default())
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestDelegation(t *testing.T) {
	root, err := Issue(fixtures.Alice, fixtures.Bob, Capabilities{
		"mailto:alice@example.com": {"msg/send": {{}}},
	})
	require.NoError(t, err)

	leaf, err := Issue(fixtures.Bob, fixtures.Mallory, Capabilities{
		"mailto:alice@example.com": {"msg/send": {{"to": "bob@example.com"}}},
	}, WithProof(root.Link()))
	require.NoError(t, err)

	p, err := Parse(leaf.String())
	require.NoError(t, err)
	require.Equal(t, []Link{root.Link()}, p.Proofs())
	require.Equal(t, fixtures.Bob.DID(), p.Issuer().DID())
	require.Equal(t, root.Audience(), p.Issuer().DID())
}

func TestVarsig(t *testing.T) {
	u, err := Issue(fixtures.Alice, fixtures.Bob, all)
	require.NoError(t, err)
	b, err := u.Varsig()
	require.NoError(t, err)

	h, err := varsig.Decode(b)
	require.NoError(t, err)
	require.Equal(t, varsig.EdDSA, h.Algorithm)
	require.Equal(t, varsig.JWT, h.Encoding)
}

func TestMarshalJSON(t *testing.T) {
	root, err := Issue(fixtures.Alice, fixtures.Bob, all)
	require.NoError(t, err)
	u, err := Issue(fixtures.Bob, fixtures.Mallory, all, WithExpiration(1234), WithNonce("n"), WithProof(root.Link()))
	require.NoError(t, err)

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, fixtures.Bob.DID().String(), out["issuer"])
	require.Equal(t, fixtures.Mallory.DID().String(), out["audience"])
	require.Equal(t, Version, out["version"])
	require.Equal(t, float64(1234), out["expiration"])
	require.Equal(t, "n", out["nonce"])
	require.Equal(t, u.String(), out["ucan"])
	require.Equal(t, u.String(), out["bytes"])
	require.Equal(t, map[string]any{"/": u.Link().String()}, out["cid"])
	require.Equal(t, []any{map[string]any{"/": root.Link().String()}}, out["proofs"])
	require.NotContains(t, out, "notBefore")
}

func TestStore(t *testing.T) {
	u0, err := Issue(fixtures.Alice, fixtures.Bob, all, WithNonce("0"))
	require.NoError(t, err)
	u1, err := Issue(fixtures.Alice, fixtures.Bob, all, WithNonce("1"))
	require.NoError(t, err)

	s := NewStore(u1, u0)
	require.False(t, s.Add(u1))
	require.Equal(t, 2, s.Len())
	require.Equal(t, []Link{u1.Link(), u0.Link()}, s.Links())
	require.True(t, s.Has(u0.Link()))

	got, ok := s.Get(u0.Link())
	require.True(t, ok)
	require.Equal(t, u0.String(), got.String())

	_, ok = s.GetString("bafkqaaa")
	require.False(t, ok)

	var seen []string
	for u := range s.All() {
		seen = append(seen, u.Nonce())
	}
	require.Equal(t, []string{"1", "0"}, seen)
}
