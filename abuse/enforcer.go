package abuse

import (
	"context"
	"log/slog"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/history"
	"github.com/vainamoinen-app/vainamoinen/platform"
)

const (
	BanDurationDays = 7
	BanReason       = "Excessive delegated moderation actions"
	BanNote         = "Auto-ban issued by Väinämöinen app"
	BanMessage      = "You have been temporarily banned for repeated misuse of delegated moderation actions."

	CurrentlyBannedText = "You are currently banned from this community."
)

// Called after a ban has been applied. Failures are logged by the caller and never retried.
type BanNotifier interface {
	SendBan(ctx context.Context, ban BanEvent) error
}

type BanEvent struct {
	Username    string
	HourlyCount int
	DailyCount  int
	Hourly      bool
	Daily       bool
}

type Enforcer struct {
	History  *history.Store
	Banner   platform.Banner
	Notifier BanNotifier
	Logger   *slog.Logger

	DurationDays int
	Reason       string
	Note         string
	Message      string
}

func NewEnforcer(hist *history.Store, banner platform.Banner, logger *slog.Logger) *Enforcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enforcer{
		History:      hist,
		Banner:       banner,
		Logger:       logger,
		DurationDays: BanDurationDays,
		Reason:       BanReason,
		Note:         BanNote,
		Message:      BanMessage,
	}
}

func (e *Enforcer) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Issues a ban when either flag is set. Returns whether the ban call succeeded. Failures are logged and not retried.
func (e *Enforcer) ApplyBanIfNeeded(ctx context.Context, username string, exceedHourly, exceedDaily bool) bool {
	if !exceedHourly && !exceedDaily {
		return false
	}
	if e.Banner == nil || username == "" {
		return false
	}
	days := e.DurationDays
	if days <= 0 {
		days = BanDurationDays
	}
	err := e.Banner.BanUser(ctx, platform.BanRequest{
		Username:     username,
		DurationDays: days,
		Reason:       orDefault(e.Reason, BanReason),
		Note:         orDefault(e.Note, BanNote),
		Message:      orDefault(e.Message, BanMessage),
	})
	if err != nil {
		bansFailed.Inc()
		e.logger().Error("failed to ban user for abuse", "username", username, "err", err)
		return false
	}
	bansApplied.Inc()
	e.logger().Warn("banned user for excessive actions", "username", username, "hourly", exceedHourly, "daily", exceedDaily, "days", days)
	return true
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Outcome of reporting one action.
type Outcome struct {
	Record *history.Record
	// message to show the acting user, if any
	Notice string
	Tier   Tier
	// true when the user was banned now, was already banned, or reached a ban threshold
	Blocked bool
	// true when a ban was applied by this report
	BannedNow bool
}

// Records an action for username and escalates: tier message, and for the ban tier a single ban call followed by ban marker entries. The ban and the marker appends are independent steps; a failed marker append is logged and does not undo the ban.
func (e *Enforcer) Report(ctx context.Context, username string, act history.Action) (*Outcome, error) {
	if username == "" {
		return &Outcome{}, nil
	}
	rec, err := e.History.RecordAction(ctx, username, act)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Record: rec}
	if rec == nil {
		return out, nil
	}
	actionsRecorded.WithLabelValues(metricAction(act.Action)).Inc()

	msg, ok := Classify(rec.HourlyCount, rec.DailyCount)
	if rec.Banned {
		out.Notice = CurrentlyBannedText
		out.Blocked = true
		return out, nil
	}
	if !ok {
		return out, nil
	}
	out.Notice = msg.Text
	out.Tier = msg.Tier
	warningsIssued.WithLabelValues(msg.Tier.String()).Inc()

	exceedHourly, exceedDaily := ExceedsBan(rec.HourlyCount, rec.DailyCount)
	out.Blocked = exceedHourly || exceedDaily
	if !out.Blocked {
		return out, nil
	}
	if !e.ApplyBanIfNeeded(ctx, username, exceedHourly, exceedDaily) {
		return out, nil
	}
	out.BannedNow = true
	if exceedHourly {
		if err := e.History.AppendEntry(ctx, username, history.Action{Action: actionlog.BanHourly}, true); err != nil {
			e.logger().Error("failed to record hourly ban marker", "username", username, "err", err)
		}
	}
	if exceedDaily {
		if err := e.History.AppendEntry(ctx, username, history.Action{Action: actionlog.BanDaily}, true); err != nil {
			e.logger().Error("failed to record daily ban marker", "username", username, "err", err)
		}
	}
	if e.Notifier != nil {
		ev := BanEvent{
			Username:    username,
			HourlyCount: rec.HourlyCount,
			DailyCount:  rec.DailyCount,
			Hourly:      exceedHourly,
			Daily:       exceedDaily,
		}
		if err := e.Notifier.SendBan(ctx, ev); err != nil {
			e.logger().Error("failed to send ban notification", "username", username, "err", err)
		}
	}
	return out, nil
}
