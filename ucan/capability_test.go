package ucan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateCapabilities(t *testing.T) {
	valid := []Capabilities{
		{"ucan:*": {"*": {{}}}},
		{"ucan:./*": {"*": {{}}}},
		{"ucan://did:key:z6Mk/*": {"ucan/*": {{}}}},
		{"mailto:alice@example.com": {"msg/send": {{"to": "bob"}}, "msg/receive": {{}, {"max": 5}}}},
		{"https://example.com/blog": {"crud/create": {{}}}},
		{},
	}
	for _, caps := range valid {
		require.NoError(t, ValidateCapabilities(caps), caps)
	}

	invalid := []Capabilities{
		{"nocolon": {"*": {{}}}},
		{":missing-scheme": {"*": {{}}}},
		{"ucan:*": {"noslash": {{}}}},
		{"ucan:*": {"/verb": {{}}}},
		{"ucan:*": {"ns/": {{}}}},
		{"ucan:*": {}},
		{"ucan:*": {"*": {}}},
		{"ucan:*": {"*": {nil}}},
	}
	for _, caps := range invalid {
		require.ErrorIs(t, ValidateCapabilities(caps), ErrInvalidCapability, caps)
	}
}
