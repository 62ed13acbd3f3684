package ucan

import (
	"regexp"
	"strings"

	"github.com/ipvm-wg/go-ucan-agent/core/result/failure"
)

const ErrInvalidCapability = failure.Kind("InvalidCapability")

var resourcePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:.+$`)

// ValidateResource checks the resource has a `scheme:identifier` shape. The
// reserved `ucan:*` and `ucan:./*` forms are included.
func ValidateResource(r Resource) error {
	if !resourcePattern.MatchString(r) {
		return failure.New(ErrInvalidCapability, "invalid resource %q: expected scheme:identifier", r)
	}
	return nil
}

// ValidateAbility checks the ability is `*` or `namespace/verb`.
func ValidateAbility(a Ability) error {
	if a == "*" {
		return nil
	}
	ns, verb, ok := strings.Cut(a, "/")
	if !ok || ns == "" || verb == "" {
		return failure.New(ErrInvalidCapability, "invalid ability %q: expected namespace/verb or *", a)
	}
	return nil
}

// ValidateCapabilities checks the shape of every resource and ability. Each
// ability needs at least one caveat, `[{}]` grants it without constraints.
func ValidateCapabilities(caps Capabilities) error {
	for r, abilities := range caps {
		if err := ValidateResource(r); err != nil {
			return err
		}
		if len(abilities) == 0 {
			return failure.New(ErrInvalidCapability, "resource %q has no abilities", r)
		}
		for a, caveats := range abilities {
			if err := ValidateAbility(a); err != nil {
				return err
			}
			if len(caveats) == 0 {
				return failure.New(ErrInvalidCapability, "ability %q on %q has no caveats", a, r)
			}
			for _, c := range caveats {
				if c == nil {
					return failure.New(ErrInvalidCapability, "ability %q on %q has a null caveat", a, r)
				}
			}
		}
	}
	return nil
}
