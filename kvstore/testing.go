package kvstore

import (
	"context"
	"errors"
	"sync"
)

// Test helper which records every operation made against an inner store.
type RecordingStore struct {
	Inner Store

	mu  sync.Mutex
	Ops []Op
}

type Op struct {
	Kind string // "get", "put", or "delete"
	Key  string
}

var _ Store = (*RecordingStore)(nil)

func NewRecordingStore(inner Store) *RecordingStore {
	return &RecordingStore{Inner: inner}
}

func (s *RecordingStore) record(kind, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ops = append(s.Ops, Op{Kind: kind, Key: key})
}

func (s *RecordingStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.record("get", key)
	return s.Inner.Get(ctx, key)
}

func (s *RecordingStore) Put(ctx context.Context, key string, val []byte) error {
	s.record("put", key)
	return s.Inner.Put(ctx, key, val)
}

func (s *RecordingStore) Delete(ctx context.Context, key string) error {
	s.record("delete", key)
	return s.Inner.Delete(ctx, key)
}

// Returns (and clears) the recorded operations.
func (s *RecordingStore) Reset() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := s.Ops
	s.Ops = nil
	return ops
}

// Reports whether any recorded operation touched key.
func (s *RecordingStore) Touched(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range s.Ops {
		if op.Key == key {
			return true
		}
	}
	return false
}

var ErrInjected = errors.New("injected store failure")

// Test helper which fails every operation, or only operations on keys for which Fail returns true.
type FailingStore struct {
	Inner Store
	Fail  func(kind, key string) bool
}

var _ Store = (*FailingStore)(nil)

func (s *FailingStore) fails(kind, key string) bool {
	if s.Fail == nil {
		return true
	}
	return s.Fail(kind, key)
}

func (s *FailingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.fails("get", key) || s.Inner == nil {
		return nil, ErrInjected
	}
	return s.Inner.Get(ctx, key)
}

func (s *FailingStore) Put(ctx context.Context, key string, val []byte) error {
	if s.fails("put", key) || s.Inner == nil {
		return ErrInjected
	}
	return s.Inner.Put(ctx, key, val)
}

func (s *FailingStore) Delete(ctx context.Context, key string) error {
	if s.fails("delete", key) || s.Inner == nil {
		return ErrInjected
	}
	return s.Inner.Delete(ctx, key)
}
