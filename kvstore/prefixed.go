package kvstore

import (
	"context"
)

// Namespaces every key of an underlying store, so several applications can share one backend.
type PrefixedStore struct {
	Inner  Store
	Prefix string
}

var _ Store = (*PrefixedStore)(nil)

func Prefixed(inner Store, prefix string) *PrefixedStore {
	return &PrefixedStore{Inner: inner, Prefix: prefix}
}

func (s *PrefixedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.Inner.Get(ctx, s.Prefix+key)
}

func (s *PrefixedStore) Put(ctx context.Context, key string, val []byte) error {
	return s.Inner.Put(ctx, s.Prefix+key, val)
}

func (s *PrefixedStore) Delete(ctx context.Context, key string) error {
	return s.Inner.Delete(ctx, s.Prefix+key)
}

func (s *PrefixedStore) Close() error {
	return Close(s.Inner)
}
