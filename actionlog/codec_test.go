package actionlog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecodeShapes(t *testing.T) {
	assert := assert.New(t)

	assert.Empty(Decode(nil))
	assert.NotNil(Decode(nil))
	assert.Empty(Decode([]byte(`{"t": 1}`)))
	assert.Empty(Decode([]byte(`"hello"`)))
	assert.Empty(Decode([]byte(`[1, 2`)))
	assert.Empty(Decode([]byte(`null`)))

	// legacy bare timestamps
	assert.Equal([]Entry{{T: 1000}, {T: 2000}}, Decode([]byte(`[1000, 2000]`)))

	// objects, with junk mixed in
	raw := `[
		{"t": 1000, "a": "post-lock", "u": "redd.it/abc", "r": "spam", "user": "alice"},
		{"t": "1001", "a": "post-lock"},
		{"a": "post-lock"},
		{"t": 1002, "a": 7, "u": null},
		"junk",
		null,
		true,
		3000
	]`
	assert.Equal([]Entry{
		{T: 1000, A: "post-lock", U: "redd.it/abc", R: "spam", User: "alice"},
		{T: 1002},
		{T: 3000},
	}, Decode([]byte(raw)))
}

func TestDecodeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	entries := []Entry{
		{T: 1700000000000, A: PostRemove, U: "redd.it/abc", R: "off topic"},
		{T: 1700000000001, A: BanHourly},
	}
	b, err := json.Marshal(entries)
	assert.NoError(err)
	assert.Equal(entries, Decode(b))
}

func TestDecodeStrings(t *testing.T) {
	assert := assert.New(t)

	assert.Equal([]string{}, DecodeStrings(nil))
	assert.Equal([]string{}, DecodeStrings([]byte(`{"a": 1}`)))
	assert.Equal([]string{"alice", "bob"}, DecodeStrings([]byte(`["alice", 3, "bob", "alice", null]`)))
}

func TestDecodeCounts(t *testing.T) {
	assert := assert.New(t)

	assert.Nil(DecodeCounts(nil))
	assert.Nil(DecodeCounts([]byte(`[1, 2]`)))
	assert.Nil(DecodeCounts([]byte(`null`)))
	assert.Equal(map[string]int{"post-lock": 3, "ban-daily": 1}, DecodeCounts([]byte(`{"post-lock": 3, "ban-daily": 1, "bad": "x"}`)))
}

func TestWindows(t *testing.T) {
	assert := assert.New(t)

	now := time.UnixMilli(100 * DayWindow.Milliseconds())
	ms := Millis(now)
	entries := []Entry{
		{T: ms - RetentionWindow.Milliseconds()}, // exactly at the cutoff: dropped
		{T: ms - RetentionWindow.Milliseconds() + 1},
		{T: ms - DayWindow.Milliseconds() + 1, A: PostLock},
		{T: ms - HourWindow.Milliseconds(), A: PostLock}, // not inside the hour window
		{T: ms - 10, A: PostFreeze},
		{T: ms - 5, A: BanHourly},
		{T: ms, A: CommentRemove},
	}
	trimmed := Trim(entries, now)
	assert.Equal(6, len(trimmed))
	assert.Equal(entries[1], trimmed[0])

	assert.Equal(1, CountAbusive(entries, now, HourWindow))
	assert.Equal(3, CountAbusive(entries, now, DayWindow))
}

func TestCountMatchesDefinition(t *testing.T) {
	assert := assert.New(t)

	now := time.UnixMilli(1_700_000_000_000)
	ms := Millis(now)
	offsets := []int64{0, 1, 59 * 60_000, 3_600_000, 3_600_001, 86_399_999, 86_400_000, 90_000_000}
	entries := []Entry{}
	for i, off := range offsets {
		e := Entry{T: ms - off, A: PostLock}
		if i%3 == 0 {
			e.A = CommentUnfreeze
		}
		entries = append(entries, e)
	}

	hourly, daily := 0, 0
	for _, e := range entries {
		if IsFreezeAction(e.A) {
			continue
		}
		if e.T > ms-3_600_000 {
			hourly++
		}
		if e.T > ms-86_400_000 {
			daily++
		}
	}
	assert.Equal(hourly, CountAbusive(entries, now, HourWindow))
	assert.Equal(daily, CountAbusive(entries, now, DayWindow))
}

func TestNewestFirst(t *testing.T) {
	assert := assert.New(t)

	entries := []Entry{{T: 1}, {T: 3, A: "x"}, {T: 2}, {T: 3, A: "y"}}
	sorted := NewestFirst(entries)
	assert.Equal([]Entry{{T: 3, A: "x"}, {T: 3, A: "y"}, {T: 2}, {T: 1}}, sorted)
	// input untouched
	assert.Equal(int64(1), entries[0].T)
}

func TestActionClasses(t *testing.T) {
	assert := assert.New(t)

	assert.True(IgnoredForAbuse(PostFreeze))
	assert.True(IgnoredForAbuse(CommentUnfreeze))
	assert.True(IgnoredForAbuse(BanDaily))
	assert.True(IgnoredForAbuse(InitialSetup))
	assert.False(IgnoredForAbuse(PostLock))
	assert.False(IgnoredForAbuse(""))
	assert.True(IsFreezeAction(PostUnfreeze))
	assert.False(IsFreezeAction(BanHourly))
	assert.True(IsAdminMarker(WriteAutomod))
}
