// Package memory is an in-process kv.KV.
package memory

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/ipvm-wg/go-ucan-agent/core/clock"
	"github.com/ipvm-wg/go-ucan-agent/kv"
)

type Option func(s *Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// Store keeps entries in a map. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	clock   clock.Clock
	entries map[string]kv.Entry
}

var _ kv.KV = (*Store)(nil)

func New(options ...Option) *Store {
	s := &Store{clock: clock.Real(), entries: map[string]kv.Entry{}}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, key kv.Key) ([]byte, bool, error) {
	if err := key.Validate(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	e, ok := s.entries[key.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.Expired(s.clock.Now().Unix()) {
		s.evict(e)
		return nil, false, nil
	}
	return slices.Clone(e.Value), true, nil
}

func (s *Store) Set(ctx context.Context, key kv.Key, value []byte, options ...kv.SetOption) error {
	if err := key.Validate(); err != nil {
		return err
	}
	cfg := kv.NewSetConfig(options...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.String()] = kv.Entry{
		Key:        slices.Clone(key),
		Value:      slices.Clone(value),
		Expiration: cfg.Expiration,
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key kv.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key.String())
	return nil
}

func (s *Store) List(ctx context.Context, prefix kv.Key) iter.Seq2[kv.Entry, error] {
	return func(yield func(kv.Entry, error) bool) {
		now := s.clock.Now().Unix()

		s.mu.RLock()
		var live, expired []kv.Entry
		for _, e := range s.entries {
			if !e.Key.HasPrefix(prefix) {
				continue
			}
			if e.Expired(now) {
				expired = append(expired, e)
				continue
			}
			live = append(live, e)
		}
		s.mu.RUnlock()

		for _, e := range expired {
			s.evict(e)
		}

		slices.SortFunc(live, func(a, b kv.Entry) int {
			return strings.Compare(a.Key.String(), b.Key.String())
		})
		for _, e := range live {
			if err := ctx.Err(); err != nil {
				yield(kv.Entry{}, err)
				return
			}
			e.Value = slices.Clone(e.Value)
			if !yield(e, nil) {
				return
			}
		}
	}
}

// evict removes an expired entry unless it was replaced meanwhile.
func (s *Store) evict(e kv.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[e.Key.String()]; ok && cur.Expired(s.clock.Now().Unix()) {
		delete(s.entries, e.Key.String())
	}
}

func (s *Store) Close() error {
	return nil
}
