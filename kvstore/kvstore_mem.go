package kvstore

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// In-process store. Safe for concurrent use, but like every Store it offers no multi-key or read-modify-write atomicity.
type MemStore struct {
	Data *xsync.MapOf[string, []byte]
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		Data: xsync.NewMapOf[string, []byte](),
	}
}

func (s *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := s.Data.Load(key)
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemStore) Put(ctx context.Context, key string, val []byte) error {
	buf := make([]byte, len(val))
	copy(buf, val)
	s.Data.Store(key, buf)
	return nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.Data.Delete(key)
	return nil
}

// Lists every stored key. Only used by tests and debugging tools; the moderation components keep explicit indexes instead.
func (s *MemStore) Keys() []string {
	keys := []string{}
	s.Data.Range(func(k string, _ []byte) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}
