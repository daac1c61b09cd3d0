package cliutil

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vainamoinen-app/vainamoinen/kvstore"

	"github.com/stretchr/testify/assert"
)

func TestSetupSlog(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	logger, err := SetupSlog(LogOptions{LogLevel: "warn", LogFormat: "json", Writer: &buf})
	assert.NoError(err)
	logger.Info("dropped")
	logger.Warn("kept", "username", "alice")
	out := buf.String()
	assert.NotContains(out, "dropped")
	assert.Contains(out, `"msg":"kept"`)
	assert.Contains(out, `"username":"alice"`)

	_, err = SetupSlog(LogOptions{LogLevel: "loud", Writer: &buf})
	assert.Error(err)
	_, err = SetupSlog(LogOptions{LogFormat: "xml", Writer: &buf})
	assert.Error(err)
}

func TestSetupSlogEnv(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("VAINAMOINEN_LOG_LEVEL", "debug")
	t.Setenv("VAINAMOINEN_LOG_FMT", "text")
	var buf bytes.Buffer
	logger, err := SetupSlog(LogOptions{Writer: &buf})
	assert.NoError(err)
	logger.Debug("visible")
	assert.True(strings.Contains(buf.String(), "msg=visible"))
}

func TestSetupSlogFile(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "vainamoinen.log")
	logger, err := SetupSlog(LogOptions{LogPath: path})
	assert.NoError(err)
	logger.Info("to file")
}

func TestOpenStore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	for _, u := range []string{
		"mem://",
		"bolt://" + filepath.Join(dir, "kv.bolt"),
		"pebble://" + filepath.Join(dir, "pebble"),
		"sqlite://" + filepath.Join(dir, "kv.sqlite"),
	} {
		s, err := OpenStore(u, StoreOptions{MaxConnections: 1})
		if !assert.NoError(err, u) {
			continue
		}
		assert.Equal(KeyPrefix, s.Prefix)
		assert.NoError(s.Put(ctx, "freeze:post:p1", []byte("true")))
		v, err := s.Get(ctx, "freeze:post:p1")
		assert.NoError(err)
		assert.Equal("true", string(v))
		assert.NoError(kvstore.Close(s))
	}
}

func TestOpenStoreMemNamespace(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	s, err := OpenStore("mem://", StoreOptions{})
	assert.NoError(err)
	assert.NoError(s.Put(ctx, "actions:index", []byte(`["alice"]`)))
	mem := s.Inner.(*kvstore.MemStore)
	assert.Equal([]string{"vainamoinen:actions:index"}, mem.Keys())
}

func TestOpenStoreErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := OpenStore("nonsense", StoreOptions{})
	assert.Error(err)
	_, err = OpenStore("ftp://example.com", StoreOptions{})
	assert.Error(err)
	_, err = OpenStore("bolt://", StoreOptions{})
	assert.Error(err)
	_, err = SetupDatabase("mysql://localhost", 1)
	assert.Error(err)
}
