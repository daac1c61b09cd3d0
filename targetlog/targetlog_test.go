package targetlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/kvstore"
	"github.com/vainamoinen-app/vainamoinen/target"

	"github.com/stretchr/testify/assert"
)

func testStore(kv kvstore.Store) (*Store, *time.Time) {
	now := time.UnixMilli(1_700_000_000_000)
	s := NewStore(kv, nil)
	s.Now = func() time.Time { return now }
	return s, &now
}

func TestAppendAndEntries(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s, now := testStore(kvstore.NewMemStore())
	ref := target.NewRef(target.Post, "t3_abc")

	assert.NoError(s.Append(ctx, ref, Entry{Action: actionlog.PostLock, Reason: "heated", Username: "alice"}))
	*now = now.Add(time.Minute)
	assert.NoError(s.Append(ctx, ref, Entry{Action: actionlog.PostUnlock, URL: "redd.it/abc", Username: "bob"}))

	entries, err := s.Entries(ctx, ref)
	assert.NoError(err)
	assert.Len(entries, 2)
	assert.Equal(actionlog.PostUnlock, entries[0].A)
	assert.Equal("bob", entries[0].User)
	assert.Equal(actionlog.PostLock, entries[1].A)
	assert.Equal("heated", entries[1].R)

	// other targets are independent
	other, err := s.Entries(ctx, target.NewRef(target.Comment, "t3_abc"))
	assert.NoError(err)
	assert.Empty(other)

	refs, err := s.ListTargets(ctx)
	assert.NoError(err)
	assert.Equal([]target.Ref{ref}, refs)
}

func TestRetention(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s, now := testStore(kvstore.NewMemStore())
	ref := target.NewRef(target.Comment, "t1_xyz")

	assert.NoError(s.Append(ctx, ref, Entry{Action: actionlog.CommentRemove}))
	*now = now.Add(actionlog.RetentionWindow)

	entries, err := s.Entries(ctx, ref)
	assert.NoError(err)
	assert.Empty(entries)

	assert.NoError(s.Append(ctx, ref, Entry{Action: actionlog.CommentRestore}))
	entries, err = s.Entries(ctx, ref)
	assert.NoError(err)
	assert.Len(entries, 1)
	assert.Equal(actionlog.CommentRestore, entries[0].A)
}

func TestSingleActionGate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s, _ := testStore(kvstore.NewMemStore())
	ref := target.NewRef(target.Post, "t3_abc")

	acted, err := s.HasUserActed(ctx, ref, "alice")
	assert.NoError(err)
	assert.False(acted)

	assert.NoError(s.MarkUserActed(ctx, ref, "alice"))
	assert.NoError(s.MarkUserActed(ctx, ref, "alice"))
	for i := 0; i < 3; i++ {
		acted, err = s.HasUserActed(ctx, ref, "alice")
		assert.NoError(err)
		assert.True(acted)
	}

	acted, err = s.HasUserActed(ctx, ref, "bob")
	assert.NoError(err)
	assert.False(acted)

	raw, err := s.KV.Get(ctx, ActorKey(ref))
	assert.NoError(err)
	assert.Equal([]string{"alice"}, actionlog.DecodeStrings(raw))
}

func TestListTargetsSkipsMalformed(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	kv := kvstore.NewMemStore()
	s, _ := testStore(kv)

	assert.NoError(kv.Put(ctx, IndexKey, []byte(`["post:a","bogus","video:b",7,"comment:c:d"]`)))
	refs, err := s.ListTargets(ctx)
	assert.NoError(err)
	assert.Equal([]target.Ref{
		target.NewRef(target.Post, "a"),
		target.NewRef(target.Comment, "c:d"),
	}, refs)
}

func TestClearAll(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	kv := kvstore.NewMemStore()
	s, _ := testStore(kv)
	a := target.NewRef(target.Post, "a")
	b := target.NewRef(target.Comment, "b")

	assert.NoError(s.Append(ctx, a, Entry{Action: actionlog.PostLock}))
	assert.NoError(s.MarkUserActed(ctx, a, "alice"))
	assert.NoError(s.Append(ctx, b, Entry{Action: actionlog.CommentLock}))

	cleared, err := s.ClearAll(ctx)
	assert.NoError(err)
	assert.Equal(2, cleared)
	assert.Empty(kv.Keys())
}

func TestClearAllDeletesIndexOnFailure(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	mem := kvstore.NewMemStore()
	fs := &kvstore.FailingStore{Inner: mem}
	s, _ := testStore(fs)
	a := target.NewRef(target.Post, "a")
	b := target.NewRef(target.Post, "b")

	fs.Fail = func(kind, key string) bool { return false }
	assert.NoError(s.Append(ctx, a, Entry{Action: actionlog.PostLock}))
	assert.NoError(s.Append(ctx, b, Entry{Action: actionlog.PostLock}))

	// a sub-delete fails
	fs.Fail = func(kind, key string) bool { return kind == "delete" && key == LogKey(a) }
	cleared, err := s.ClearAll(ctx)
	assert.True(errors.Is(err, kvstore.ErrInjected))
	assert.Equal(1, cleared)
	raw, _ := mem.Get(ctx, IndexKey)
	assert.Nil(raw)

	// listing fails
	fs.Fail = func(kind, key string) bool { return false }
	assert.NoError(s.Append(ctx, b, Entry{Action: actionlog.PostLock}))
	fs.Fail = func(kind, key string) bool { return kind == "get" && key == IndexKey }
	_, err = s.ClearAll(ctx)
	assert.Error(err)
	raw, _ = mem.Get(ctx, IndexKey)
	assert.Nil(raw)
}

func TestStoreUnavailable(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	s := NewStore(nil, nil)
	ref := target.NewRef(target.Post, "a")

	assert.NoError(s.Append(ctx, ref, Entry{Action: actionlog.PostLock}))
	assert.NoError(s.MarkUserActed(ctx, ref, "alice"))
	acted, err := s.HasUserActed(ctx, ref, "alice")
	assert.NoError(err)
	assert.False(acted)
	entries, err := s.Entries(ctx, ref)
	assert.NoError(err)
	assert.Empty(entries)
	_, err = s.ClearAll(ctx)
	assert.NoError(err)
}
