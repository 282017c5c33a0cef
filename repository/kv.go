package repository

import (
	"context"
	"strconv"
)

// KeyValueStore is the string-valued persistent storage a browser profile's
// session keys live in. SetMany and Replace must be all-or-nothing.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	// Replace deletes drop and writes values in one atomic step. A key in
	// both ends up holding its new value.
	Replace(ctx context.Context, values map[string]string, drop []string) error
	// Advance stores value under key unless the key already holds a decimal
	// integer >= value. It reports whether it wrote.
	Advance(ctx context.Context, key string, value int64) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// ProfilePrefix returns the key prefix isolating one profile's storage.
func ProfilePrefix(profileID string) string {
	return "profile:" + profileID + ":"
}

type scoped struct {
	inner  KeyValueStore
	prefix string
}

// Scope returns a view of kv where every key is transparently prefixed.
func Scope(kv KeyValueStore, prefix string) KeyValueStore {
	if prefix == "" {
		return kv
	}
	return &scoped{inner: kv, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scoped) SetMany(ctx context.Context, values map[string]string) error {
	prefixed := make(map[string]string, len(values))
	for k, v := range values {
		prefixed[s.prefix+k] = v
	}
	return s.inner.SetMany(ctx, prefixed)
}

func (s *scoped) Replace(ctx context.Context, values map[string]string, drop []string) error {
	prefixed := make(map[string]string, len(values))
	for k, v := range values {
		prefixed[s.prefix+k] = v
	}
	return s.inner.Replace(ctx, prefixed, s.prefixAll(drop))
}

func (s *scoped) Advance(ctx context.Context, key string, value int64) (bool, error) {
	return s.inner.Advance(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, s.prefixAll(keys)...)
}

func (s *scoped) prefixAll(keys []string) []string {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = s.prefix + k
	}
	return prefixed
}

func (s *scoped) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// AdvanceAllowed reports whether current may be overwritten by value under
// the Advance rule. Drivers that compare in Go share it.
func AdvanceAllowed(current string, value int64) bool {
	n, err := strconv.ParseInt(current, 10, 64)
	return err != nil || n < value
}
