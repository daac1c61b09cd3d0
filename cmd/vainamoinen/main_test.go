package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type cliHarness struct {
	t     *testing.T
	store string
}

func newHarness(t *testing.T) *cliHarness {
	return &cliHarness{t: t, store: "bolt://" + filepath.Join(t.TempDir(), "kv.bolt")}
}

// Runs one command against the shared store and returns what it wrote to stdout.
func (h *cliHarness) run(args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	full := append([]string{"vainamoinen", "--store", h.store, "--log-level", "error"}, args...)
	err := app.Run(full)
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)

	out, err := h.run("classify", "0", "0")
	assert.NoError(err)
	assert.Equal("none\n", out)

	out, err = h.run("classify", "6", "0")
	assert.NoError(err)
	assert.Contains(out, "last-warning")
	assert.Contains(out, "(6 of 7)")

	out, err = h.run("classify", "7", "12")
	assert.NoError(err)
	assert.Contains(out, "ban: hourly=true daily=true")

	_, err = h.run("classify", "seven", "0")
	assert.Error(err)
}

func TestRecordEscalatesToBan(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)

	var out string
	var err error
	for i := 0; i < 7; i++ {
		out, err = h.run("--user", "alice", "record", "--action", "post-remove", "--reason", "spam", "--target", "post:p1")
		assert.NoError(err)
	}
	assert.Contains(out, "hourly=7 daily=7 tier=ban banned=true")
	assert.Contains(out, "You have been banned for excessive mod actions use.")

	_, err = h.run("--user", "alice", "record", "--action", "post-remove")
	assert.Error(err)

	out, err = h.run("--user", "bob", "counts")
	assert.NoError(err)
	assert.Contains(out, "alice")

	out, err = h.run("--user", "bob", "--moderator", "target-log", "post", "p1")
	assert.NoError(err)
	assert.Contains(out, "alice")
	assert.Contains(out, `"spam"`)

	_, err = h.run("unban", "alice")
	assert.NoError(err)
	_, err = h.run("--user", "alice", "record", "--action", "post-lock")
	assert.NoError(err)
}

func TestFreezeCommands(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)

	out, err := h.run("frozen", "post", "p1")
	assert.NoError(err)
	assert.Equal("false\n", out)

	_, err = h.run("--user", "bob", "freeze", "post", "p1")
	assert.Error(err)

	out, err = h.run("--user", "mod", "--moderator", "freeze", "post", "p1")
	assert.NoError(err)
	assert.True(strings.HasPrefix(out, "Post frozen."))

	out, err = h.run("frozen", "post", "p1")
	assert.NoError(err)
	assert.Equal("true\n", out)

	_, err = h.run("frozen", "thread", "p1")
	assert.Error(err)
}

func TestClearLogCommand(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t)

	_, err := h.run("--user", "alice", "record", "--action", "comment-lock", "--target", "comment:c1")
	assert.NoError(err)

	out, err := h.run("--user", "bob", "clear-log")
	assert.NoError(err)
	assert.Contains(out, "Action log cleared (counts preserved).")

	out, err = h.run("--user", "bob", "log")
	assert.NoError(err)
	assert.Contains(out, "No action log entries found.")

	out, err = h.run("--user", "alice", "my-actions")
	assert.NoError(err)
	assert.Contains(out, "No actions recorded in the past 20 days.")
}
