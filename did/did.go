package did

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
)

const Prefix = "did:"
const KeyPrefix = "did:key:"

// DIDCore is the multicodec tag used for the binary form of DIDs that are not
// did:key.
const DIDCore = 0x0d1d

var DIDCorePrefix = varint.ToUvarint(DIDCore)

// Undef can be used to represent a nil or undefined DID, using DID{}
// directly is also acceptable.
var Undef = DID{}

// DID is a decentralized identifier. It is comparable, so two DIDs parsed
// from the same string are equal with ==.
type DID struct {
	str string
}

// DID returns itself, allowing a DID to be used where a principal is
// expected.
func (d DID) DID() DID {
	return d
}

// Defined reports whether this is not the undefined DID.
func (d DID) Defined() bool {
	return d.str != ""
}

// Bytes returns the binary form of the DID. For did:key this is the
// multicodec tagged public key, for every other method it is the method
// specific string tagged with [DIDCore].
func (d DID) Bytes() []byte {
	if !d.Defined() {
		return nil
	}
	if strings.HasPrefix(d.str, KeyPrefix) {
		_, b, err := multibase.Decode(d.str[len(KeyPrefix):])
		if err != nil {
			return nil
		}
		return b
	}
	suffix := []byte(d.str[len(Prefix):])
	out := make([]byte, 0, len(DIDCorePrefix)+len(suffix))
	out = append(out, DIDCorePrefix...)
	return append(out, suffix...)
}

func (d DID) String() string {
	return d.str
}

func (d DID) MarshalJSON() ([]byte, error) {
	if !d.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(d.str)
}

func (d *DID) UnmarshalJSON(b []byte) error {
	var str *string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("decoding DID JSON: %w", err)
	}
	if str == nil || *str == "" {
		*d = Undef
		return nil
	}
	parsed, err := Parse(*str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Decode a DID from its binary form.
func Decode(bytes []byte) (DID, error) {
	code, n, err := varint.FromUvarint(bytes)
	if err != nil {
		return Undef, fmt.Errorf("reading DID multicodec: %w", err)
	}
	if code == DIDCore {
		if len(bytes) == n {
			return Undef, fmt.Errorf("missing DID method specific identifier")
		}
		return DID{Prefix + string(bytes[n:])}, nil
	}
	str, err := multibase.Encode(multibase.Base58BTC, bytes)
	if err != nil {
		return Undef, fmt.Errorf("encoding did:key: %w", err)
	}
	return DID{KeyPrefix + str}, nil
}

// Parse a DID string. Only the general shape `did:<method>:<id>` is checked,
// and for did:key that the identifier is valid multibase.
func Parse(str string) (DID, error) {
	if !strings.HasPrefix(str, Prefix) {
		return Undef, fmt.Errorf("must start with '%s'", Prefix)
	}
	method, id, ok := strings.Cut(str[len(Prefix):], ":")
	if !ok || method == "" || id == "" {
		return Undef, fmt.Errorf("invalid DID %q: expected did:<method>:<identifier>", str)
	}
	if strings.HasPrefix(str, KeyPrefix) {
		if _, _, err := multibase.Decode(id); err != nil {
			return Undef, fmt.Errorf("decoding did:key multibase: %w", err)
		}
	}
	return DID{str}, nil
}
