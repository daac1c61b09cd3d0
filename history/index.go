package history

import (
	"context"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/kvstore"
)

// Returns every tracked username: the union of the current and legacy indexes.
func (s *Store) Usernames(ctx context.Context) ([]string, error) {
	if s.KV == nil {
		return []string{}, nil
	}
	current, legacy, err := s.loadIndexes(ctx)
	if err != nil {
		return nil, err
	}
	return union(current, legacy), nil
}

func (s *Store) loadIndexes(ctx context.Context) ([]string, []string, error) {
	raw, err := s.KV.Get(ctx, IndexKey)
	if err != nil {
		return nil, nil, err
	}
	current := actionlog.DecodeStrings(raw)
	raw, err = s.KV.Get(ctx, LegacyIndexKey)
	if err != nil {
		return nil, nil, err
	}
	return current, actionlog.DecodeStrings(raw), nil
}

// Adds username to the current index, folding in the legacy index on the way. The legacy index is dropped once its contents are carried forward.
func (s *Store) ensureIndexed(ctx context.Context, username string) error {
	current, legacy, err := s.loadIndexes(ctx)
	if err != nil {
		return err
	}
	if len(legacy) == 0 && contains(current, username) {
		return nil
	}
	next := union(current, legacy, []string{username})
	if err := kvstore.PutJSON(ctx, s.KV, IndexKey, next); err != nil {
		return err
	}
	if len(legacy) > 0 {
		return s.KV.Delete(ctx, LegacyIndexKey)
	}
	return nil
}

func contains(list []string, val string) bool {
	for _, v := range list {
		if v == val {
			return true
		}
	}
	return false
}

func union(lists ...[]string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, v := range l {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
