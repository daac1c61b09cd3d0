package engine

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Collects notices in memory.
type RecordingUI struct {
	mu     sync.Mutex
	Toasts []string
}

func (u *RecordingUI) ShowToast(msg string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.Toasts = append(u.Toasts, msg)
}

func (u *RecordingUI) Last() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.Toasts) == 0 {
		return ""
	}
	return u.Toasts[len(u.Toasts)-1]
}

// Writes each notice as a line to W, and to the debug log.
type WriterUI struct {
	W      io.Writer
	Logger *slog.Logger
}

func (u *WriterUI) ShowToast(msg string) {
	if u.Logger != nil {
		u.Logger.Debug("toast", "msg", msg)
	}
	fmt.Fprintln(u.W, msg)
}
