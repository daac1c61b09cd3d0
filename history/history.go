// Per-user rolling action history, lifetime action counters, and the username index, with one-way migration from the legacy key schema.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/kvstore"
	"github.com/vainamoinen-app/vainamoinen/platform"
)

// Result of recording an action: trailing abuse counts, computed fresh from the stored history.
type Record struct {
	HourlyCount int
	DailyCount  int
	Username    string
	Banned      bool
}

type Action struct {
	Action   string
	URL      string
	Reason   string
	TargetID string
}

// All writes are read-modify-write against the store with no locking; concurrent writers for the same user can lose updates.
type Store struct {
	// nil means the store is unavailable: reads are empty and writes are skipped
	KV kvstore.Store
	// optional; when set, actions by banned users are not recorded
	Bans   platform.BanChecker
	Logger *slog.Logger
	Now    func() time.Time
}

func NewStore(kv kvstore.Store, bans platform.BanChecker, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		KV:     kv,
		Bans:   bans,
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

// Appends the action to the user's history and returns trailing hourly/daily counts. If the user is currently banned, nothing is recorded and a zero-count banned record is returned. Ban status lookup failures are logged and treated as not banned.
func (s *Store) RecordAction(ctx context.Context, username string, act Action) (*Record, error) {
	if s.KV == nil {
		return nil, nil
	}
	if s.Bans != nil {
		banned, err := s.Bans.IsBanned(ctx, username)
		if err != nil {
			s.logger().Error("failed to check ban status", "username", username, "err", err)
		} else if banned {
			return &Record{Username: username, Banned: true}, nil
		}
	}

	now := s.now()
	entries, err := s.appendEntry(ctx, username, now, act)
	if err != nil {
		return nil, err
	}
	if act.Action != "" && !actionlog.IsFreezeAction(act.Action) {
		if err := s.incrementCount(ctx, username, act.Action); err != nil {
			return nil, err
		}
	}

	s.logger().Debug("recorded action", "username", username, "action", act.Action, "target", act.TargetID)
	return &Record{
		HourlyCount: actionlog.CountAbusive(entries, now, actionlog.HourWindow),
		DailyCount:  actionlog.CountAbusive(entries, now, actionlog.DayWindow),
		Username:    username,
	}, nil
}

// Appends like RecordAction, including legacy migration and indexing, but skips the ban check and threshold evaluation. Used for entries which must never escalate, such as ban markers and freeze toggles.
func (s *Store) AppendEntry(ctx context.Context, username string, act Action, incrementCount bool) error {
	if s.KV == nil {
		return nil
	}
	if _, err := s.appendEntry(ctx, username, s.now(), act); err != nil {
		return err
	}
	if incrementCount && act.Action != "" {
		return s.incrementCount(ctx, username, act.Action)
	}
	return nil
}

func (s *Store) appendEntry(ctx context.Context, username string, now time.Time, act Action) ([]actionlog.Entry, error) {
	raw, fromLegacy, err := s.loadForward(ctx, HistoryKey(username), LegacyHistoryKey(username))
	if err != nil {
		return nil, fmt.Errorf("loading history for %s: %w", username, err)
	}
	entries := actionlog.Trim(actionlog.Decode(raw), now)
	entries = append(entries, actionlog.Entry{
		T: actionlog.Millis(now),
		A: act.Action,
		U: act.URL,
		R: act.Reason,
	})
	if err := kvstore.PutJSON(ctx, s.KV, HistoryKey(username), entries); err != nil {
		return nil, fmt.Errorf("saving history for %s: %w", username, err)
	}
	if fromLegacy {
		if err := s.KV.Delete(ctx, LegacyHistoryKey(username)); err != nil {
			return nil, fmt.Errorf("deleting legacy history for %s: %w", username, err)
		}
		s.logger().Info("migrated legacy action history", "username", username)
	}
	if err := s.ensureIndexed(ctx, username); err != nil {
		s.logger().Error("failed to update action index", "username", username, "err", err)
	}
	return entries, nil
}

// Reads the current key, falling back to the legacy key only when the current key is absent. The returned flag is true when the value came from the legacy key, which the caller deletes after writing forward.
func (s *Store) loadForward(ctx context.Context, current, legacy string) ([]byte, bool, error) {
	raw, err := s.KV.Get(ctx, current)
	if err != nil {
		return nil, false, err
	}
	if raw != nil {
		return raw, false, nil
	}
	raw, err = s.KV.Get(ctx, legacy)
	if err != nil {
		return nil, false, err
	}
	return raw, raw != nil, nil
}

func (s *Store) incrementCount(ctx context.Context, username, action string) error {
	raw, fromLegacy, err := s.loadForward(ctx, CountKey(username), LegacyCountKey(username))
	if err != nil {
		return fmt.Errorf("loading action counts for %s: %w", username, err)
	}
	counts := actionlog.DecodeCounts(raw)
	if counts == nil {
		counts = make(map[string]int)
	}
	counts[action] = counts[action] + 1
	if err := kvstore.PutJSON(ctx, s.KV, CountKey(username), counts); err != nil {
		return fmt.Errorf("saving action counts for %s: %w", username, err)
	}
	if fromLegacy {
		if err := s.KV.Delete(ctx, LegacyCountKey(username)); err != nil {
			return fmt.Errorf("deleting legacy action counts for %s: %w", username, err)
		}
	}
	return nil
}

// Returns the user's history within the retention window, in stored order.
func (s *Store) Entries(ctx context.Context, username string) ([]actionlog.Entry, error) {
	if s.KV == nil {
		return []actionlog.Entry{}, nil
	}
	raw, _, err := s.loadForward(ctx, HistoryKey(username), LegacyHistoryKey(username))
	if err != nil {
		return nil, err
	}
	return actionlog.Trim(actionlog.Decode(raw), s.now()), nil
}

// Returns the user's lifetime action counters; nil if none are stored.
func (s *Store) Counts(ctx context.Context, username string) (map[string]int, error) {
	if s.KV == nil {
		return nil, nil
	}
	raw, _, err := s.loadForward(ctx, CountKey(username), LegacyCountKey(username))
	if err != nil {
		return nil, err
	}
	return actionlog.DecodeCounts(raw), nil
}

// Deletes every indexed user's history (current and legacy) and both indexes. Action counters are deliberately kept. Per-user delete failures are logged and skipped. Returns the usernames which were cleared.
func (s *Store) Clear(ctx context.Context) ([]string, error) {
	if s.KV == nil {
		return nil, nil
	}
	usernames, err := s.Usernames(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range usernames {
		if err := s.KV.Delete(ctx, HistoryKey(u)); err != nil {
			s.logger().Error("failed to delete action history", "username", u, "err", err)
			continue
		}
		if err := s.KV.Delete(ctx, LegacyHistoryKey(u)); err != nil {
			s.logger().Error("failed to delete legacy action history", "username", u, "err", err)
		}
	}
	if err := s.KV.Delete(ctx, IndexKey); err != nil {
		return usernames, fmt.Errorf("deleting action index: %w", err)
	}
	if err := s.KV.Delete(ctx, LegacyIndexKey); err != nil {
		return usernames, fmt.Errorf("deleting legacy action index: %w", err)
	}
	return usernames, nil
}

// Removes the combined legacy counters from every indexed user's current and legacy count maps, deleting maps left empty. Returns how many count maps changed.
func (s *Store) StripLegacyCounters(ctx context.Context) (int, error) {
	if s.KV == nil {
		return 0, nil
	}
	usernames, err := s.Usernames(ctx)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, u := range usernames {
		for _, key := range []string{CountKey(u), LegacyCountKey(u)} {
			ok, err := s.stripCountersAt(ctx, key)
			if err != nil {
				return changed, fmt.Errorf("stripping legacy counters at %s: %w", key, err)
			}
			if ok {
				changed++
			}
		}
	}
	return changed, nil
}

func (s *Store) stripCountersAt(ctx context.Context, key string) (bool, error) {
	raw, err := s.KV.Get(ctx, key)
	if err != nil {
		return false, err
	}
	counts := actionlog.DecodeCounts(raw)
	if len(counts) == 0 {
		return false, nil
	}
	changed := false
	for _, legacy := range actionlog.LegacyRemoveCounters {
		if _, ok := counts[legacy]; ok {
			delete(counts, legacy)
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	if len(counts) == 0 {
		return true, s.KV.Delete(ctx, key)
	}
	return true, kvstore.PutJSON(ctx, s.KV, key, counts)
}
