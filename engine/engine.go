// Caller-facing layer for delegated moderation: guarded lock/remove/restore/sticky/freeze handlers, reason prompts, and the reports and administrative operations over the action logs.
//
// Handlers never fail the invoking action on store or platform errors. Failures are logged, shown to the acting user as a single generic notice through UI, and reported back in the returned Result.
package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/vainamoinen-app/vainamoinen/abuse"
	"github.com/vainamoinen-app/vainamoinen/freeze"
	"github.com/vainamoinen-app/vainamoinen/history"
	"github.com/vainamoinen-app/vainamoinen/kvstore"
	"github.com/vainamoinen-app/vainamoinen/platform"
	"github.com/vainamoinen-app/vainamoinen/targetlog"
)

var (
	ErrMissingUsername = errors.New("no logged in user")
	ErrBanned          = errors.New("user is banned")
	ErrFeatureDisabled = errors.New("feature disabled")
	ErrUnknownAction   = errors.New("unknown action")
)

// Where user-facing notices go.
type UI interface {
	ShowToast(msg string)
}

type discardUI struct{}

func (discardUI) ShowToast(string) {}

// Engine binds one platform connection (and its acting user) to the shared action stores. It holds no per-call state, so it can serve many invocations when Platform resolves the acting user per call.
type Engine struct {
	Platform platform.Platform
	UI       UI
	Config   Config
	Logger   *slog.Logger

	// raw store, used for pending reason payloads; nil is unavailable
	KV      kvstore.Store
	History *history.Store
	Targets *targetlog.Store
	Freeze  *freeze.Gate
	Abuse   *abuse.Enforcer
}

func New(kv kvstore.Store, p platform.Platform, ui UI, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if ui == nil {
		ui = discardUI{}
	}
	hist := history.NewStore(kv, p, logger)
	enf := abuse.NewEnforcer(hist, p, logger)
	if cfg.BanDurationDays > 0 {
		enf.DurationDays = cfg.BanDurationDays
	}
	if cfg.BanReason != "" {
		enf.Reason = cfg.BanReason
	}
	if cfg.BanNote != "" {
		enf.Note = cfg.BanNote
	}
	if cfg.BanMessage != "" {
		enf.Message = cfg.BanMessage
	}
	return &Engine{
		Platform: p,
		UI:       ui,
		Config:   cfg,
		Logger:   logger,
		KV:       kv,
		History:  hist,
		Targets:  targetlog.NewStore(kv, logger),
		Freeze:   freeze.NewGate(kv),
		Abuse:    enf,
	}
}

// Replaces the clock on every time-based component.
func (e *Engine) SetClock(now func() time.Time) {
	e.History.Now = now
	e.Targets.Now = now
}

// Sets the notifier called after automatic bans.
func (e *Engine) SetNotifier(n abuse.BanNotifier) {
	e.Abuse.Notifier = n
}

func (e *Engine) toast(msg string) {
	if e.UI == nil {
		return
	}
	e.UI.ShowToast(msg)
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
