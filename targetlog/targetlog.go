// Per-target audit log of actions taken on posts and comments, the set of users who already acted on each target, and an index of every tracked target.
package targetlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/kvstore"
	"github.com/vainamoinen-app/vainamoinen/target"
)

const (
	LogPrefix   = "target:log:"
	ActorPrefix = "target:actors:"
	IndexKey    = "target:index"
)

func LogKey(ref target.Ref) string {
	return LogPrefix + ref.String()
}

func ActorKey(ref target.Ref) string {
	return ActorPrefix + ref.String()
}

type Entry struct {
	Action   string
	Reason   string
	URL      string
	Username string
}

// Like the per-user history, writes are unlocked read-modify-write.
type Store struct {
	// nil means the store is unavailable
	KV     kvstore.Store
	Logger *slog.Logger
	Now    func() time.Time
}

func NewStore(kv kvstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		KV:     kv,
		Logger: logger,
		Now:    time.Now,
	}
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Appends an entry to the target's log, trimming to the retention window, and registers the target in the index.
func (s *Store) Append(ctx context.Context, ref target.Ref, e Entry) error {
	if s.KV == nil {
		return nil
	}
	now := s.now()
	raw, err := s.KV.Get(ctx, LogKey(ref))
	if err != nil {
		return fmt.Errorf("loading target log for %s: %w", ref, err)
	}
	entries := actionlog.Trim(actionlog.Decode(raw), now)
	entries = append(entries, actionlog.Entry{
		T:    actionlog.Millis(now),
		A:    e.Action,
		R:    e.Reason,
		U:    e.URL,
		User: e.Username,
	})
	if err := kvstore.PutJSON(ctx, s.KV, LogKey(ref), entries); err != nil {
		return fmt.Errorf("saving target log for %s: %w", ref, err)
	}
	return s.addToIndex(ctx, ref)
}

// Returns the target's log within the retention window, newest first.
func (s *Store) Entries(ctx context.Context, ref target.Ref) ([]actionlog.Entry, error) {
	if s.KV == nil {
		return []actionlog.Entry{}, nil
	}
	raw, err := s.KV.Get(ctx, LogKey(ref))
	if err != nil {
		return nil, fmt.Errorf("loading target log for %s: %w", ref, err)
	}
	return actionlog.NewestFirst(actionlog.Trim(actionlog.Decode(raw), s.now())), nil
}

func (s *Store) HasUserActed(ctx context.Context, ref target.Ref, username string) (bool, error) {
	if s.KV == nil {
		return false, nil
	}
	raw, err := s.KV.Get(ctx, ActorKey(ref))
	if err != nil {
		return false, fmt.Errorf("loading actors for %s: %w", ref, err)
	}
	for _, u := range actionlog.DecodeStrings(raw) {
		if u == username {
			return true, nil
		}
	}
	return false, nil
}

// Idempotent.
func (s *Store) MarkUserActed(ctx context.Context, ref target.Ref, username string) error {
	if s.KV == nil {
		return nil
	}
	raw, err := s.KV.Get(ctx, ActorKey(ref))
	if err != nil {
		return fmt.Errorf("loading actors for %s: %w", ref, err)
	}
	actors := actionlog.DecodeStrings(raw)
	if !contains(actors, username) {
		actors = append(actors, username)
		if err := kvstore.PutJSON(ctx, s.KV, ActorKey(ref), actors); err != nil {
			return fmt.Errorf("saving actors for %s: %w", ref, err)
		}
	}
	return s.addToIndex(ctx, ref)
}

func (s *Store) addToIndex(ctx context.Context, ref target.Ref) error {
	raw, err := s.KV.Get(ctx, IndexKey)
	if err != nil {
		return fmt.Errorf("loading target index: %w", err)
	}
	index := actionlog.DecodeStrings(raw)
	if contains(index, ref.String()) {
		return nil
	}
	index = append(index, ref.String())
	if err := kvstore.PutJSON(ctx, s.KV, IndexKey, index); err != nil {
		return fmt.Errorf("saving target index: %w", err)
	}
	return nil
}

// Lists every indexed target. Malformed index entries are skipped.
func (s *Store) ListTargets(ctx context.Context) ([]target.Ref, error) {
	if s.KV == nil {
		return []target.Ref{}, nil
	}
	raw, err := s.KV.Get(ctx, IndexKey)
	if err != nil {
		return nil, fmt.Errorf("loading target index: %w", err)
	}
	refs := []target.Ref{}
	for _, v := range actionlog.DecodeStrings(raw) {
		ref, err := target.ParseRef(v)
		if err != nil {
			s.logger().Warn("skipping malformed target index entry", "entry", v)
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Deletes every indexed target's log and actor set, then the index itself. The index is deleted even when listing or an individual delete fails, so a bad index never blocks a later clear. Returns the number of targets whose keys were all deleted.
func (s *Store) ClearAll(ctx context.Context) (cleared int, err error) {
	if s.KV == nil {
		return 0, nil
	}
	defer func() {
		if derr := s.KV.Delete(ctx, IndexKey); derr != nil {
			err = errors.Join(err, fmt.Errorf("deleting target index: %w", derr))
		}
	}()

	refs, err := s.ListTargets(ctx)
	if err != nil {
		return 0, err
	}
	var errs []error
	for _, ref := range refs {
		lerr := s.KV.Delete(ctx, LogKey(ref))
		aerr := s.KV.Delete(ctx, ActorKey(ref))
		if lerr != nil || aerr != nil {
			errs = append(errs, fmt.Errorf("clearing %s: %w", ref, errors.Join(lerr, aerr)))
			continue
		}
		cleared++
	}
	return cleared, errors.Join(errs...)
}

func contains(list []string, val string) bool {
	for _, v := range list {
		if v == val {
			return true
		}
	}
	return false
}
