package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/kvstore"
	"github.com/vainamoinen-app/vainamoinen/target"
)

const (
	BanCountLabel = "ActionBanCount"

	entrySeparator = "\n-------------------------------\n"
)

// Display labels for log entries.
var ActionLabels = map[string]string{
	actionlog.PostLock:         "Post Lock",
	actionlog.PostUnlock:       "Post Unlock",
	actionlog.PostStickyToggle: "Post Sticky/Unsticky",
	actionlog.PostRemove:       "Post Remove",
	actionlog.PostRestore:      "Post Restore",
	actionlog.PostFreeze:       "Post Frozen",
	actionlog.PostUnfreeze:     "Post Unfrozen",
	actionlog.CommentLock:      "Comment Lock",
	actionlog.CommentUnlock:    "Comment Unlock",
	actionlog.CommentRemove:    "Comment Remove",
	actionlog.CommentRestore:   "Comment Restore",
	actionlog.CommentFreeze:    "Comment Frozen",
	actionlog.CommentUnfreeze:  "Comment Unfrozen",
	"post-lock-toggle":         "Post Lock/Unlock",
	"post-remove-toggle":       "Post Remove/Restore",
	"comment-lock-toggle":      "Comment Lock/Unlock",
	"comment-remove-toggle":    "Comment Remove/Restore",
	actionlog.InitializeFlair:  "Initialize Flair Templates",
	actionlog.WriteAutomod:     "Write Automod Config",
	actionlog.BanHourly:        "Ban (Hourly Threshold)",
	actionlog.BanDaily:         "Ban (Daily Threshold)",
	actionlog.InitialSetup:     "Initial Setup",
}

// Labels the lifetime counters are aggregated under. Both ban markers sum into BanCountLabel. Freeze actions are never counted.
var CountLabels = map[string]string{
	actionlog.PostLock:         "Lock/Unlock",
	actionlog.PostUnlock:       "Lock/Unlock",
	actionlog.PostRemove:       "Remove",
	actionlog.PostRestore:      "Restore",
	actionlog.CommentLock:      "Lock/Unlock",
	actionlog.CommentUnlock:    "Lock/Unlock",
	actionlog.CommentRemove:    "Remove",
	actionlog.CommentRestore:   "Restore",
	"post-lock-toggle":         "Lock/Unlock",
	"post-remove-toggle":       "Remove/Restore",
	"comment-lock-toggle":      "Lock/Unlock",
	"comment-remove-toggle":    "Remove/Restore",
	actionlog.PostStickyToggle: "Sticky/Unsticky",
	actionlog.InitializeFlair:  "Initialize Flair Templates",
	actionlog.WriteAutomod:     "Write Automod Config",
	actionlog.BanHourly:        BanCountLabel,
	actionlog.BanDaily:         BanCountLabel,
	actionlog.InitialSetup:     "Initial Setup",
}

// Compact UTC form: YY-MM-DD HH:MM:SSZ
func FormatTimestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("06-01-02 15:04:05") + "Z"
}

func labelFor(labels map[string]string, action string) string {
	if l, ok := labels[action]; ok {
		return l
	}
	return action
}

func formatActionEntries(entries []actionlog.Entry) []string {
	lines := []string{}
	for _, e := range actionlog.NewestFirst(entries) {
		var b strings.Builder
		b.WriteString(FormatTimestamp(e.T))
		if e.A != "" {
			b.WriteString("\n    " + labelFor(ActionLabels, e.A))
		}
		if e.U != "" {
			b.WriteString("\n    " + e.U)
		}
		if e.R != "" {
			b.WriteString("\n    \"" + e.R + "\"")
		}
		lines = append(lines, b.String())
	}
	return lines
}

func bulletLines(lines []string) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "  - " + l
	}
	return strings.Join(out, entrySeparator)
}

type LabelCount struct {
	Label string
	Count int
}

// Aggregates raw counters by CountLabels, sorted by label. The ban count is always present.
func AggregateCounts(counts map[string]int) []LabelCount {
	agg := make(map[string]int)
	bans := 0
	for action, n := range counts {
		label := labelFor(CountLabels, action)
		if label == BanCountLabel {
			bans += n
			continue
		}
		agg[label] += n
	}
	agg[BanCountLabel] = bans
	out := make([]LabelCount, 0, len(agg))
	for l, n := range agg {
		out = append(out, LabelCount{Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Label) < strings.ToLower(out[j].Label)
	})
	return out
}

func formatCounts(counts []LabelCount) string {
	lines := make([]string, len(counts))
	for i, c := range counts {
		lines[i] = fmt.Sprintf("  - %s: %d", c.Label, c.Count)
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) ensureStore() error {
	if e.KV == nil {
		e.toast("KV Store unavailable in this context.")
		return kvstore.ErrUnavailable
	}
	return nil
}

// Every tracked user's retained history, users sorted by name and entries newest first.
func (e *Engine) ActionLogSnapshot(ctx context.Context) (string, error) {
	if !e.ensureNotBanned(ctx) {
		return "", ErrBanned
	}
	if err := e.ensureStore(); err != nil {
		return "", err
	}
	usernames, err := e.History.Usernames(ctx)
	if err != nil {
		return "", e.reportFailure("Failed to load action log.", err)
	}
	sort.Strings(usernames)
	var sections []string
	for _, u := range usernames {
		entries, err := e.History.Entries(ctx, u)
		if err != nil {
			return "", e.reportFailure("Failed to load action log.", err)
		}
		if len(entries) == 0 {
			continue
		}
		sections = append(sections, u+"\n"+bulletLines(formatActionEntries(entries)))
	}
	if len(sections) == 0 {
		return "No action log entries found.", nil
	}
	return strings.Join(sections, "\n\n"), nil
}

// Every tracked user's lifetime counters, aggregated by display label.
func (e *Engine) ActionCountsSnapshot(ctx context.Context) (string, error) {
	if !e.ensureNotBanned(ctx) {
		return "", ErrBanned
	}
	if err := e.ensureStore(); err != nil {
		return "", err
	}
	usernames, err := e.History.Usernames(ctx)
	if err != nil {
		return "", e.reportFailure("Failed to load action counts.", err)
	}
	sort.Strings(usernames)
	var sections []string
	for _, u := range usernames {
		counts, err := e.History.Counts(ctx, u)
		if err != nil {
			return "", e.reportFailure("Failed to load action counts.", err)
		}
		sections = append(sections, u+"\n"+formatCounts(AggregateCounts(counts)))
	}
	if len(sections) == 0 {
		return "No action counts recorded.", nil
	}
	return strings.Join(sections, "\n\n"), nil
}

type MyActionsReport struct {
	Totals string
	Recent string
}

// The acting user's own totals and recent history. Available to banned users.
func (e *Engine) MyActions(ctx context.Context) (*MyActionsReport, error) {
	if err := e.ensureStore(); err != nil {
		return nil, err
	}
	username := e.currentUsername(ctx)
	if username == "" {
		e.toast("You must be logged in to view your actions.")
		return nil, ErrMissingUsername
	}
	entries, err := e.History.Entries(ctx, username)
	if err != nil {
		return nil, e.reportFailure("Failed to load your action log.", err)
	}
	counts, err := e.History.Counts(ctx, username)
	if err != nil {
		return nil, e.reportFailure("Failed to load your action log.", err)
	}
	rep := &MyActionsReport{
		Totals: formatCounts(AggregateCounts(counts)),
		Recent: "No actions recorded in the past 20 days.",
	}
	if len(entries) > 0 {
		rep.Recent = bulletLines(formatActionEntries(entries))
	}
	return rep, nil
}

// Actions taken on one post or comment, newest first. Acting usernames are only shown to moderators.
func (e *Engine) TargetLog(ctx context.Context, ref target.Ref) (string, error) {
	if err := e.ensureStore(); err != nil {
		return "", err
	}
	entries, err := e.Targets.Entries(ctx, ref)
	if err != nil {
		return "", e.reportFailure("Failed to load actions for this item.", err)
	}
	if len(entries) == 0 {
		return "No actions recorded for this item.", nil
	}
	showUser, err := e.Platform.IsModerator(ctx)
	if err != nil {
		e.logger().Warn("failed to check moderator status", "err", err)
		showUser = false
	}
	parts := make([]string, len(entries))
	for i, en := range entries {
		var b strings.Builder
		b.WriteString("  - " + FormatTimestamp(en.T))
		if showUser && en.User != "" {
			b.WriteString("\n    " + en.User)
		}
		label := "Action"
		if en.A != "" {
			label = labelFor(ActionLabels, en.A)
		}
		reason := en.R
		if reason == "" {
			reason = "No reason provided."
		}
		b.WriteString("\n    " + label + "\n    \"" + reason + "\"")
		parts[i] = b.String()
	}
	return strings.Join(parts, entrySeparator), nil
}

func (e *Engine) reportFailure(text string, err error) error {
	e.logger().Error(strings.TrimSuffix(text, "."), "err", err)
	e.toast(text)
	return err
}
