package abuse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/history"
	"github.com/vainamoinen-app/vainamoinen/kvstore"
	"github.com/vainamoinen-app/vainamoinen/platform"

	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	events []BanEvent
}

func (n *recordingNotifier) SendBan(ctx context.Context, ev BanEvent) error {
	n.events = append(n.events, ev)
	return nil
}

func testEnforcer() (*Enforcer, *platform.MemPlatform, *time.Time) {
	kv := kvstore.NewMemStore()
	p := platform.NewMemPlatform("alice")
	now := time.UnixMilli(1_700_000_000_000)
	hist := history.NewStore(kv, p, nil)
	hist.Now = func() time.Time { return now }
	e := NewEnforcer(hist, p, nil)
	return e, p, &now
}

func countAction(entries []actionlog.Entry, action string) int {
	n := 0
	for _, e := range entries {
		if e.A == action {
			n++
		}
	}
	return n
}

func TestApplyBanIfNeeded(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	e, p, _ := testEnforcer()

	assert.False(e.ApplyBanIfNeeded(ctx, "alice", false, false))
	assert.Equal(0, p.BanCallCount())

	assert.True(e.ApplyBanIfNeeded(ctx, "alice", true, false))
	assert.Equal(1, p.BanCallCount())
	req := p.BanCalls[0]
	assert.Equal("alice", req.Username)
	assert.Equal(7, req.DurationDays)
	assert.Equal(BanReason, req.Reason)
	assert.Equal(BanNote, req.Note)
	assert.Equal(BanMessage, req.Message)

	p.BanErr = errors.New("rate limited")
	assert.False(e.ApplyBanIfNeeded(ctx, "bob", false, true))
	// no retry
	assert.Equal(2, p.BanCallCount())
}

func TestReportEscalation(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	e, p, now := testEnforcer()
	notifier := &recordingNotifier{}
	e.Notifier = notifier

	var notices []string
	for i := 0; i < 6; i++ {
		out, err := e.Report(ctx, "alice", history.Action{Action: actionlog.PostLock})
		assert.NoError(err)
		assert.False(out.Blocked)
		notices = append(notices, out.Notice)
		*now = now.Add(time.Minute)
	}
	assert.Equal([]string{
		"", "", "", "",
		"Warning! Excessive mod actions will trigger a ban. (5 of 7)",
		"Last Warning! Excessive mod actions will trigger a ban. (6 of 7)",
	}, notices)
	assert.Equal(0, p.BanCallCount())

	out, err := e.Report(ctx, "alice", history.Action{Action: actionlog.PostLock})
	assert.NoError(err)
	assert.True(out.Blocked)
	assert.True(out.BannedNow)
	assert.Equal(TierBan, out.Tier)
	assert.Equal(BannedText, out.Notice)
	assert.Equal(1, p.BanCallCount())
	assert.Len(notifier.events, 1)
	assert.True(notifier.events[0].Hourly)
	assert.False(notifier.events[0].Daily)

	entries, err := e.History.Entries(ctx, "alice")
	assert.NoError(err)
	assert.Equal(1, countAction(entries, actionlog.BanHourly))
	assert.Equal(0, countAction(entries, actionlog.BanDaily))

	// now banned: nothing recorded, no further ban
	out, err = e.Report(ctx, "alice", history.Action{Action: actionlog.PostLock})
	assert.NoError(err)
	assert.True(out.Blocked)
	assert.False(out.BannedNow)
	assert.Equal(CurrentlyBannedText, out.Notice)
	assert.Equal(1, p.BanCallCount())
}

func TestReportBothThresholds(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	e, p, now := testEnforcer()

	// 5 actions earlier in the day, outside the hourly window
	for i := 0; i < 5; i++ {
		_, err := e.Report(ctx, "alice", history.Action{Action: actionlog.CommentRemove})
		assert.NoError(err)
	}
	*now = now.Add(2 * time.Hour)
	var out *Outcome
	for i := 0; i < 7; i++ {
		var err error
		out, err = e.Report(ctx, "alice", history.Action{Action: actionlog.CommentLock})
		assert.NoError(err)
		if out.Blocked {
			break
		}
	}
	assert.True(out.BannedNow)
	assert.Equal(7, out.Record.HourlyCount)
	assert.Equal(12, out.Record.DailyCount)
	assert.Equal(1, p.BanCallCount())

	entries, err := e.History.Entries(ctx, "alice")
	assert.NoError(err)
	assert.Equal(1, countAction(entries, actionlog.BanHourly))
	assert.Equal(1, countAction(entries, actionlog.BanDaily))

	counts, err := e.History.Counts(ctx, "alice")
	assert.NoError(err)
	assert.Equal(1, counts[actionlog.BanHourly])
	assert.Equal(1, counts[actionlog.BanDaily])
}

func TestReportBanFailure(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	e, p, _ := testEnforcer()
	p.BanErr = errors.New("forbidden")

	var out *Outcome
	for i := 0; i < 7; i++ {
		var err error
		out, err = e.Report(ctx, "alice", history.Action{Action: actionlog.PostRemove})
		assert.NoError(err)
	}
	assert.True(out.Blocked)
	assert.False(out.BannedNow)
	assert.Equal(1, p.BanCallCount())

	entries, err := e.History.Entries(ctx, "alice")
	assert.NoError(err)
	assert.Equal(0, countAction(entries, actionlog.BanHourly))
}

func TestReportFreezeNotCounted(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	e, _, _ := testEnforcer()

	for i := 0; i < 10; i++ {
		out, err := e.Report(ctx, "alice", history.Action{Action: actionlog.PostFreeze})
		assert.NoError(err)
		assert.Equal(0, out.Record.HourlyCount)
		assert.False(out.Blocked)
	}
}

func TestReportStoreUnavailable(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	e := NewEnforcer(history.NewStore(nil, nil, nil), nil, nil)

	out, err := e.Report(ctx, "alice", history.Action{Action: actionlog.PostLock})
	assert.NoError(err)
	assert.Nil(out.Record)
	assert.False(out.Blocked)
}
