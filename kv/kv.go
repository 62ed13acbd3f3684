// Package kv defines the key-value store the agent keeps its signer and
// proofs in.
package kv

import (
	"context"
	"fmt"
	"iter"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

const separator = "/"

// Key is an ordered list of segments. Segments must be non-empty and must
// not contain "/".
type Key []string

// String joins the segments with "/".
func (k Key) String() string {
	return strings.Join(k, separator)
}

// Validate checks every segment is usable.
func (k Key) Validate() error {
	if len(k) == 0 {
		return fmt.Errorf("empty key")
	}
	for _, s := range k {
		if s == "" {
			return fmt.Errorf("key %q has an empty segment", k.String())
		}
		if strings.Contains(s, separator) {
			return fmt.Errorf("key segment %q contains %q", s, separator)
		}
	}
	return nil
}

// HasPrefix reports whether the first segments of k are prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, s := range prefix {
		if k[i] != s {
			return false
		}
	}
	return true
}

// ParseKey splits a joined key back into segments.
func ParseKey(s string) Key {
	return strings.Split(s, separator)
}

type Entry struct {
	Key   Key
	Value []byte
	// Expiration in seconds since the Unix epoch, nil if the entry never
	// expires.
	Expiration *int64
}

// Expired reports whether the entry is expired at now (Unix seconds).
func (e Entry) Expired(now int64) bool {
	return e.Expiration != nil && *e.Expiration <= now
}

type SetOption func(cfg *SetConfig)

type SetConfig struct {
	Expiration *int64
}

// WithExpiration sets the time in seconds since the Unix epoch after which
// the entry is no longer returned.
func WithExpiration(exp int64) SetOption {
	return func(cfg *SetConfig) {
		cfg.Expiration = &exp
	}
}

// NewSetConfig applies options.
func NewSetConfig(options ...SetOption) SetConfig {
	cfg := SetConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// KV is a key-value store. Expired entries are never returned.
type KV interface {
	// Get a value. The boolean is false if there is no live entry for key.
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte, options ...SetOption) error
	// Delete an entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key Key) error
	// List entries under prefix, ordered by key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]
	Close() error
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("kv: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("kv: CBOR decoder initialization failed: " + err.Error())
	}
}

// SetValue stores v encoded as deterministic CBOR.
func SetValue[T any](ctx context.Context, store KV, key Key, v T, options ...SetOption) error {
	b, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding value for %s: %w", key, err)
	}
	return store.Set(ctx, key, b, options...)
}

// GetValue loads a CBOR encoded value.
func GetValue[T any](ctx context.Context, store KV, key Key) (T, bool, error) {
	var v T
	b, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return v, ok, err
	}
	if err := decMode.Unmarshal(b, &v); err != nil {
		return v, false, fmt.Errorf("decoding value for %s: %w", key, err)
	}
	return v, true, nil
}

// DecodeValue decodes an entry value written with SetValue.
func DecodeValue[T any](b []byte) (T, error) {
	var v T
	err := decMode.Unmarshal(b, &v)
	return v, err
}
