// Package bearer encodes a UCAN and the proofs it references as HTTP
// headers, and decodes them back.
package bearer

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ipvm-wg/go-ucan-agent/core/ipld"
	"github.com/ipvm-wg/go-ucan-agent/core/result/failure"
	"github.com/ipvm-wg/go-ucan-agent/ucan"
)

const (
	AuthorizationHeader = "authorization"
	UCANsHeader         = "ucans"
)

const authScheme = "Bearer "

const ErrMissingAuthorizationHeader = failure.Kind("MissingAuthorizationHeader")

// Headers are the bearer headers of a token, keyed by header name.
type Headers map[string]string

// Apply sets the headers on an HTTP header set.
func (h Headers) Apply(hdr http.Header) {
	for k, v := range h {
		hdr.Set(k, v)
	}
}

// FromHTTP extracts the bearer headers from an HTTP header set.
func FromHTTP(hdr http.Header) Headers {
	h := Headers{}
	if v := hdr.Get(AuthorizationHeader); v != "" {
		h[AuthorizationHeader] = v
	}
	if v := hdr.Get(UCANsHeader); v != "" {
		h[UCANsHeader] = v
	}
	return h
}

// get finds a header ignoring case.
func (h Headers) get(name string) (string, bool) {
	if v, ok := h[name]; ok {
		return v, true
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Encode the token as an authorization header. Proofs of the token found in
// store are sent alongside in the ucans header, proofs not in the store are
// left for the receiver to resolve.
func Encode(u ucan.View, store *ucan.Store) Headers {
	h := Headers{AuthorizationHeader: authScheme + u.String()}

	found := ucan.NewStore()
	if store != nil {
		for _, p := range u.Proofs() {
			if prf, ok := store.Get(p); ok {
				found.Add(prf)
			}
		}
	}
	if found.Len() > 0 {
		var tokens []string
		for prf := range found.All() {
			tokens = append(tokens, prf.String())
		}
		h[UCANsHeader] = strings.Join(tokens, ", ")
	}
	return h
}

type Decoded struct {
	UCAN ucan.View
	// Proofs are the tokens sent in the ucans header.
	Proofs *ucan.Store
	// Missing are the proofs of UCAN not present in Proofs, in the order they
	// appear in the token.
	Missing []ipld.Link
}

// Decode parses the bearer headers. Header names match case-insensitively.
func Decode(h Headers, options ...ucan.ParseOption) (Decoded, error) {
	auth, ok := h.get(AuthorizationHeader)
	if !ok || auth == "" {
		return Decoded{}, failure.New(ErrMissingAuthorizationHeader, "Missing authorization header")
	}
	token := strings.TrimPrefix(auth, authScheme)

	u, err := ucan.Parse(token, options...)
	if err != nil {
		return Decoded{}, fmt.Errorf("parsing authorization token: %w", err)
	}

	proofs := ucan.NewStore()
	if ucans, ok := h.get(UCANsHeader); ok && strings.TrimSpace(ucans) != "" {
		for _, str := range strings.Split(ucans, ",") {
			prf, err := ucan.Parse(strings.TrimLeft(str, " \t"), options...)
			if err != nil {
				return Decoded{}, fmt.Errorf("parsing proof token: %w", err)
			}
			proofs.Add(prf)
		}
	}

	var missing []ipld.Link
	for _, p := range u.Proofs() {
		if !proofs.Has(p) {
			missing = append(missing, p)
		}
	}

	return Decoded{UCAN: u, Proofs: proofs, Missing: missing}, nil
}
