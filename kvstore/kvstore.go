package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Returned by components which require a store for a mutation when none is configured.
var ErrUnavailable = errors.New("kv store unavailable")

// A Store returns (nil, nil) from Get for absent keys, and Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
}

// Encodes val as JSON and stores it.
func PutJSON(ctx context.Context, s Store, key string, val any) error {
	b, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encoding value for %s: %w", key, err)
	}
	return s.Put(ctx, key, b)
}

// Closer is implemented by stores holding a file handle or network connection.
type Closer interface {
	Close() error
}

// Closes s if it holds any resources.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}
