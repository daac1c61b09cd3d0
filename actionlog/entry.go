package actionlog

import (
	"sort"
	"time"
)

const (
	HourWindow      = time.Hour
	DayWindow       = 24 * time.Hour
	RetentionWindow = 20 * DayWindow
)

// A single logged action. Timestamps are epoch milliseconds.
type Entry struct {
	T int64 `json:"t"`
	// action identifier
	A string `json:"a,omitempty"`
	// shortened permalink of the target
	U string `json:"u,omitempty"`
	// sanitized free-text reason
	R string `json:"r,omitempty"`
	// acting username; only populated in per-target logs
	User string `json:"user,omitempty"`
}

func (e Entry) Time() time.Time {
	return time.UnixMilli(e.T)
}

func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// Returns entries strictly newer than now minus window, preserving order.
func Within(entries []Entry, now time.Time, window time.Duration) []Entry {
	cutoff := Millis(now) - window.Milliseconds()
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.T > cutoff {
			out = append(out, e)
		}
	}
	return out
}

// Drops entries older than the retention window.
func Trim(entries []Entry, now time.Time) []Entry {
	return Within(entries, now, RetentionWindow)
}

// Counts entries inside the trailing window which are not excluded from abuse accounting.
func CountAbusive(entries []Entry, now time.Time, window time.Duration) int {
	c := 0
	for _, e := range Within(entries, now, window) {
		if !IgnoredForAbuse(e.A) {
			c++
		}
	}
	return c
}

// Sorts a copy of entries by timestamp, newest first. Ties keep their stored order.
func NewestFirst(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].T > out[j].T
	})
	return out
}
