package ucan

import "slices"

// cloneValue deep copies the JSON shaped values caveats and facts hold.
// Other values are returned as is.
func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, e := range v {
			out[i] = cloneMap(e)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneCapabilities(caps Capabilities) Capabilities {
	if caps == nil {
		return nil
	}
	out := make(Capabilities, len(caps))
	for resource, abilities := range caps {
		if abilities == nil {
			out[resource] = nil
			continue
		}
		a := make(map[Ability][]Caveat, len(abilities))
		for ability, caveats := range abilities {
			if caveats == nil {
				a[ability] = nil
				continue
			}
			c := make([]Caveat, len(caveats))
			for i, caveat := range caveats {
				c[i] = cloneMap(caveat)
			}
			a[ability] = c
		}
		out[resource] = a
	}
	return out
}

func cloneFacts(fct Facts) Facts {
	return cloneMap(fct)
}

func cloneLinks(links []Link) []Link {
	return slices.Clone(links)
}
