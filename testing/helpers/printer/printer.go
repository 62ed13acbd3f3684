package printer

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ipvm-wg/go-ucan-agent/ucan"
)

func withIndent(t *testing.T, level int) func(format string, args ...any) {
	indent := strings.Repeat("  ", level)
	return func(format string, args ...any) {
		t.Logf(indent+format, args...)
	}
}

// PrintUCAN logs a token and, recursively, those of its proofs found in
// store. Proofs not in store are logged as links.
func PrintUCAN(t *testing.T, u ucan.View, store *ucan.Store, level int) {
	t.Helper()
	log := withIndent(t, level)

	log("%s (%s)", u.Link(), SprintBytes(t, len(u.Bytes())))
	log("  Issuer: %s", u.Issuer().DID())
	log("  Audience: %s", u.Audience())

	log("  Capabilities:")
	resources := make([]string, 0, len(u.Capabilities()))
	for r := range u.Capabilities() {
		resources = append(resources, r)
	}
	slices.Sort(resources)
	for _, r := range resources {
		for ability, caveats := range u.Capabilities()[r] {
			log("    %s %s %v", r, ability, caveats)
		}
	}

	if exp := u.Expiration(); exp != nil {
		log("  Expiration: %s", time.Unix(*exp, 0).UTC())
	}
	if nbf := u.NotBefore(); nbf != 0 {
		log("  Not Before: %s", time.Unix(nbf, 0).UTC())
	}

	if len(u.Proofs()) > 0 {
		log("  Proofs:")
		for _, p := range u.Proofs() {
			var pu ucan.View
			var ok bool
			if store != nil {
				pu, ok = store.Get(p)
			}
			if !ok {
				log("    %s", p)
				continue
			}
			PrintUCAN(t, pu, store, level+2)
		}
	}
}

func SprintBytes(t *testing.T, b int) string {
	t.Helper()
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func PrintHeaders(t *testing.T, h http.Header) {
	t.Helper()
	for name, values := range h {
		for _, value := range values {
			t.Logf("%s: %s", name, value)
		}
	}
}
