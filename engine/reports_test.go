package engine

import (
	"context"
	"testing"
	"time"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/target"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("23-11-14 22:13:20Z", FormatTimestamp(1_700_000_000_000))
	assert.Equal("70-01-01 00:00:00Z", FormatTimestamp(0))
}

func TestAggregateCounts(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]LabelCount{{Label: BanCountLabel, Count: 0}}, AggregateCounts(nil))

	agg := AggregateCounts(map[string]int{
		actionlog.PostLock:      2,
		actionlog.CommentUnlock: 1,
		actionlog.BanHourly:     1,
		actionlog.BanDaily:      2,
		"custom-thing":          5,
	})
	assert.Equal([]LabelCount{
		{Label: BanCountLabel, Count: 3},
		{Label: "custom-thing", Count: 5},
		{Label: "Lock/Unlock", Count: 3},
	}, agg)
}

func TestActionLogSnapshot(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture()

	out, err := f.eng.ActionLogSnapshot(ctx)
	assert.NoError(err)
	assert.Equal("No action log entries found.", out)

	f.eng.TogglePostLock(ctx, "p1", "heated")
	f.p.Username = "bob"
	f.eng.RemovePost(ctx, "p2", "")

	out, err = f.eng.ActionLogSnapshot(ctx)
	assert.NoError(err)
	assert.Equal("alice\n"+
		"  - 23-11-14 22:13:20Z\n    Post Lock\n    redd.it/p1\n    \"heated\"\n\n"+
		"bob\n"+
		"  - 23-11-14 22:13:20Z\n    Post Remove\n    redd.it/p2", out)

	f.p.Banned["bob"] = true
	_, err = f.eng.ActionLogSnapshot(ctx)
	assert.ErrorIs(err, ErrBanned)
}

func TestActionCountsSnapshot(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture()

	out, err := f.eng.ActionCountsSnapshot(ctx)
	assert.NoError(err)
	assert.Equal("No action counts recorded.", out)

	f.eng.TogglePostLock(ctx, "p1", "")
	f.eng.TogglePostSticky(ctx, "p2")

	out, err = f.eng.ActionCountsSnapshot(ctx)
	assert.NoError(err)
	assert.Equal("alice\n  - ActionBanCount: 0\n  - Lock/Unlock: 1\n  - Sticky/Unsticky: 1", out)
}

func TestMyActions(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture()

	rep, err := f.eng.MyActions(ctx)
	assert.NoError(err)
	assert.Equal("  - ActionBanCount: 0", rep.Totals)
	assert.Equal("No actions recorded in the past 20 days.", rep.Recent)

	f.eng.TogglePostLock(ctx, "p1", "")
	f.eng.TogglePostLock(ctx, "p2", "")
	// banned users can still see their own actions
	f.p.Banned["alice"] = true
	rep, err = f.eng.MyActions(ctx)
	assert.NoError(err)
	assert.Equal("  - ActionBanCount: 0\n  - Lock/Unlock: 2", rep.Totals)
	assert.Equal("  - 23-11-14 22:13:20Z\n    Post Lock\n    redd.it/p1"+entrySeparator+
		"  - 23-11-14 22:13:20Z\n    Post Lock\n    redd.it/p2", rep.Recent)

	f.p.Username = ""
	_, err = f.eng.MyActions(ctx)
	assert.ErrorIs(err, ErrMissingUsername)
}

func TestTargetLogReport(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	f := newFixture()
	ref := target.NewRef(target.Post, "p1")

	out, err := f.eng.TargetLog(ctx, ref)
	assert.NoError(err)
	assert.Equal("No actions recorded for this item.", out)

	f.eng.TogglePostLock(ctx, "p1", "heated")

	out, err = f.eng.TargetLog(ctx, ref)
	assert.NoError(err)
	assert.Equal("  - 23-11-14 22:13:20Z\n    Post Lock\n    \"heated\"", out)

	f.p.Moderator = true
	out, err = f.eng.TargetLog(ctx, ref)
	assert.NoError(err)
	assert.Equal("  - 23-11-14 22:13:20Z\n    alice\n    Post Lock\n    \"heated\"", out)

	f.p.Username = "bob"
	f.p.Moderator = false
	*f.now = f.now.Add(time.Second)
	f.eng.TogglePostLock(ctx, "p1", "")
	out, err = f.eng.TargetLog(ctx, ref)
	assert.NoError(err)
	assert.Equal("  - 23-11-14 22:13:21Z\n    Post Unlock\n    \"No reason provided.\""+entrySeparator+
		"  - 23-11-14 22:13:20Z\n    Post Lock\n    \"heated\"", out)
}
