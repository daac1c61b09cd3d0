package engine

import (
	"context"
	"slices"
	"time"

	"github.com/vainamoinen-app/vainamoinen/history"
	"github.com/vainamoinen-app/vainamoinen/platform"
	"github.com/vainamoinen-app/vainamoinen/target"
	"github.com/vainamoinen-app/vainamoinen/targetlog"

	"go.opentelemetry.io/otel/attribute"
)

const (
	SingleActionText  = "You may only call Väinämöinen once for this item."
	CurrentlyBanned   = "You are currently banned from this community."
	LoggedOutText     = "You must be logged in to perform this action."
	OnlyModeratorText = "Only moderators can use this action."
)

type GuardOptions struct {
	// empty skips the role check
	Roles []platform.Role
	// used when the action result carries no action id
	ActionName string
	// zero when the action has no target
	Target              target.Ref
	EnforceSingleAction bool
	Reason              string
}

// Performs one state-changing action. A nil result with nil error means nothing was done.
type actionFunc func(ctx context.Context) (*Result, error)

// Runs action behind the role, ban, and single-action checks, then records it in abuse accounting (unless skipped) and the target audit log, marking the actor when gated. Results which were not performed skip all recording. Errors from the checks (other than ban status) and from the action itself are returned; errors while recording are logged.
func (e *Engine) Guard(ctx context.Context, opts GuardOptions, action actionFunc) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Guard")
	defer span.End()
	span.SetAttributes(attribute.String("action", opts.ActionName), attribute.String("target", opts.Target.String()))
	start := time.Now()
	defer func() {
		guardDuration.WithLabelValues(opts.ActionName).Observe(time.Since(start).Seconds())
	}()

	if len(opts.Roles) > 0 && !e.ensureRole(ctx, opts.Roles) {
		return e.reject(RejectRole), nil
	}
	if !e.ensureNotBanned(ctx) {
		return e.reject(RejectBanned), nil
	}

	gated := opts.EnforceSingleAction && opts.Target.Type.Valid() && opts.Target.ID != ""
	var username string
	if gated {
		username = e.currentUsername(ctx)
		if username == "" {
			e.toast(LoggedOutText)
			return e.reject(RejectLoggedOut), nil
		}
		acted, err := e.Targets.HasUserActed(ctx, opts.Target, username)
		if err != nil {
			return nil, err
		}
		if acted {
			e.toast(SingleActionText)
			return e.reject(RejectSingleAction), nil
		}
	}

	res, err := action(ctx)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return rejected(RejectFailed), nil
	}
	if res.Rejected != "" {
		guardRejections.WithLabelValues(string(res.Rejected)).Inc()
		return res, nil
	}
	if !res.Performed {
		return res, nil
	}

	if res.ActionID == "" {
		res.ActionID = opts.ActionName
	}
	if res.Reason == "" {
		res.Reason = opts.Reason
	}
	res.Reason = SanitizeReason(res.Reason)
	if res.Target == (target.Ref{}) {
		res.Target = opts.Target
	}
	actor := username
	if actor == "" {
		actor = e.currentUsername(ctx)
	}
	actionsPerformed.WithLabelValues(metricAction(res.ActionID)).Inc()

	if !res.SkipAbuseTracking && res.ActionID != "" {
		out, err := e.Abuse.Report(ctx, actor, history.Action{
			Action:   res.ActionID,
			URL:      res.URL,
			Reason:   res.Reason,
			TargetID: res.Target.ID,
		})
		if err != nil {
			e.logger().Error("abuse tracking failed", "username", actor, "action", res.ActionID, "err", err)
		} else {
			res.Abuse = out
			if out.Notice != "" {
				e.toast(out.Notice)
			}
		}
	}
	if res.Target.Type.Valid() && res.ActionID != "" {
		err := e.Targets.Append(ctx, res.Target, targetlog.Entry{
			Action:   res.ActionID,
			Reason:   res.Reason,
			URL:      res.URL,
			Username: actor,
		})
		if err != nil {
			e.logger().Error("failed to append target log", "target", res.Target.String(), "err", err)
		}
		if gated {
			if err := e.Targets.MarkUserActed(ctx, res.Target, username); err != nil {
				e.logger().Error("failed to mark target actor", "target", res.Target.String(), "username", username, "err", err)
			}
		}
	}
	return res, nil
}

func (e *Engine) reject(r Rejection) *Result {
	guardRejections.WithLabelValues(string(r)).Inc()
	return rejected(r)
}

// Returns "" when nobody is logged in or the lookup fails.
func (e *Engine) currentUsername(ctx context.Context) string {
	if e.Platform == nil {
		return ""
	}
	u, err := e.Platform.CurrentUsername(ctx)
	if err != nil {
		e.logger().Error("failed to resolve current user", "err", err)
		return ""
	}
	return u
}

func (e *Engine) ensureRole(ctx context.Context, allowed []platform.Role) bool {
	role, err := e.Platform.Role(ctx)
	if err != nil {
		e.logger().Error("failed to resolve user role", "err", err)
		role = platform.RoleNone
	}
	if !slices.Contains(allowed, role) {
		e.toast(PermissionQuote())
		return false
	}
	return true
}

// Ban status failures count as not banned.
func (e *Engine) isBanned(ctx context.Context) bool {
	username := e.currentUsername(ctx)
	if username == "" {
		return false
	}
	banned, err := e.Platform.IsBanned(ctx, username)
	if err != nil {
		e.logger().Error("failed to check ban status", "username", username, "err", err)
		return false
	}
	return banned
}

func (e *Engine) ensureNotBanned(ctx context.Context) bool {
	if e.isBanned(ctx) {
		e.toast(CurrentlyBanned)
		return false
	}
	return true
}

func (e *Engine) ensureModerator(ctx context.Context) bool {
	if e.currentUsername(ctx) == "" {
		e.toast(OnlyModeratorText)
		return false
	}
	ok, err := e.Platform.IsModerator(ctx)
	if err != nil {
		e.logger().Error("failed to confirm moderator permissions", "err", err)
		e.toast("Unable to verify moderator permissions.")
		return false
	}
	if !ok {
		e.toast(OnlyModeratorText)
		return false
	}
	return true
}
