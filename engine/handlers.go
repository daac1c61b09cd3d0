package engine

import (
	"context"
	"fmt"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/history"
	"github.com/vainamoinen-app/vainamoinen/platform"
	"github.com/vainamoinen-app/vainamoinen/target"
)

// sticky slot used for highlighted posts
const StickyPosition = 2

var (
	lockRoles   = []platform.Role{platform.RoleBaby, platform.RoleMain}
	removeRoles = []platform.Role{platform.RoleMain}
)

type actionIDs struct {
	Lock, Unlock, Remove, Restore, Freeze, Unfreeze string
}

var actionsByType = map[target.Type]actionIDs{
	target.Post: {
		Lock:     actionlog.PostLock,
		Unlock:   actionlog.PostUnlock,
		Remove:   actionlog.PostRemove,
		Restore:  actionlog.PostRestore,
		Freeze:   actionlog.PostFreeze,
		Unfreeze: actionlog.PostUnfreeze,
	},
	target.Comment: {
		Lock:     actionlog.CommentLock,
		Unlock:   actionlog.CommentUnlock,
		Remove:   actionlog.CommentRemove,
		Restore:  actionlog.CommentRestore,
		Freeze:   actionlog.CommentFreeze,
		Unfreeze: actionlog.CommentUnfreeze,
	},
}

func capitalNoun(ref target.Ref) string {
	if ref.Type == target.Comment {
		return "Comment"
	}
	return "Post"
}

// Runs a guarded action, turning an error into a logged failure with a generic notice.
func (e *Engine) run(ctx context.Context, name, failText string, opts GuardOptions, action actionFunc) *Result {
	res, err := e.Guard(ctx, opts, action)
	if err != nil {
		handlerFailures.WithLabelValues(name).Inc()
		e.logger().Error("moderation action failed", "handler", name, "target", opts.Target.String(), "err", err)
		e.toast(failText)
		return failed(err)
	}
	return res
}

func (e *Engine) TogglePostLock(ctx context.Context, postID, reason string) *Result {
	ref := target.NewRef(target.Post, postID)
	return e.run(ctx, "post-lock", "Failed to toggle lock", GuardOptions{
		Roles:               lockRoles,
		ActionName:          actionlog.PostLock,
		Target:              ref,
		EnforceSingleAction: true,
		Reason:              reason,
	}, e.toggleLock(ref))
}

func (e *Engine) ToggleCommentLock(ctx context.Context, commentID, reason string) *Result {
	ref := target.NewRef(target.Comment, commentID)
	return e.run(ctx, "comment-lock", "Failed to toggle lock", GuardOptions{
		Roles:               lockRoles,
		ActionName:          actionlog.CommentLock,
		Target:              ref,
		EnforceSingleAction: true,
		Reason:              reason,
	}, e.toggleLock(ref))
}

func (e *Engine) TogglePostSticky(ctx context.Context, postID string) *Result {
	ref := target.NewRef(target.Post, postID)
	return e.run(ctx, "post-sticky", "Failed to toggle sticky", GuardOptions{
		Roles:               removeRoles,
		ActionName:          actionlog.PostStickyToggle,
		Target:              ref,
		EnforceSingleAction: true,
	}, e.toggleSticky(ref))
}

func (e *Engine) RemovePost(ctx context.Context, postID, reason string) *Result {
	return e.removeOrRestore(ctx, target.NewRef(target.Post, postID), reason, true)
}

func (e *Engine) RestorePost(ctx context.Context, postID, reason string) *Result {
	return e.removeOrRestore(ctx, target.NewRef(target.Post, postID), reason, false)
}

func (e *Engine) RemoveComment(ctx context.Context, commentID, reason string) *Result {
	return e.removeOrRestore(ctx, target.NewRef(target.Comment, commentID), reason, true)
}

func (e *Engine) RestoreComment(ctx context.Context, commentID, reason string) *Result {
	return e.removeOrRestore(ctx, target.NewRef(target.Comment, commentID), reason, false)
}

func (e *Engine) removeRestoreEnabled(t target.Type) bool {
	if t == target.Comment {
		return e.Config.RemoveRestoreComments
	}
	return e.Config.RemoveRestorePosts
}

func (e *Engine) ensureRemoveRestoreEnabled(t target.Type) bool {
	if e.removeRestoreEnabled(t) {
		return true
	}
	e.toast(fmt.Sprintf("Remove/Restore is disabled for %ss.", t))
	return false
}

func (e *Engine) removeOrRestore(ctx context.Context, ref target.Ref, reason string, remove bool) *Result {
	if !e.ensureRemoveRestoreEnabled(ref.Type) {
		return e.reject(RejectDisabled)
	}
	ids := actionsByType[ref.Type]
	name, verb, action := ids.Restore, "restore", e.restore(ref)
	if remove {
		name, verb, action = ids.Remove, "remove", e.remove(ref)
	}
	return e.run(ctx, name, fmt.Sprintf("Failed to %s %s.", verb, ref.Noun()), GuardOptions{
		Roles:               removeRoles,
		ActionName:          name,
		Target:              ref,
		EnforceSingleAction: true,
		Reason:              reason,
	}, action)
}

func (e *Engine) TogglePostFreeze(ctx context.Context, postID string) *Result {
	return e.toggleFreezeHandler(ctx, target.NewRef(target.Post, postID))
}

func (e *Engine) ToggleCommentFreeze(ctx context.Context, commentID string) *Result {
	return e.toggleFreezeHandler(ctx, target.NewRef(target.Comment, commentID))
}

// Moderator only. Freeze toggles bypass the single-action gate and abuse accounting; they are kept in the user's history without counters, and in the target log.
func (e *Engine) toggleFreezeHandler(ctx context.Context, ref target.Ref) *Result {
	if !e.ensureModerator(ctx) {
		return e.reject(RejectModerator)
	}
	name := actionsByType[ref.Type].Freeze
	res := e.run(ctx, name, fmt.Sprintf("Failed to update %s freeze state.", ref.Noun()), GuardOptions{
		ActionName: name,
		Target:     ref,
	}, e.toggleFreeze(ref))
	if res.Performed {
		e.logWithoutCounts(ctx, res)
	}
	return res
}

func (e *Engine) logWithoutCounts(ctx context.Context, res *Result) {
	if res.ActionID == "" {
		return
	}
	username := e.currentUsername(ctx)
	if username == "" {
		return
	}
	err := e.History.AppendEntry(ctx, username, history.Action{
		Action:   res.ActionID,
		URL:      res.URL,
		TargetID: res.Target.ID,
	}, false)
	if err != nil {
		e.logger().Error("failed to log freeze action", "username", username, "err", err)
	}
}

// Refuses with a notice when the target is frozen. Freeze lookup errors are returned, so a failing store blocks the action.
func (e *Engine) ensureThawed(ctx context.Context, ref target.Ref) (*Result, error) {
	frozen, err := e.Freeze.IsFrozen(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !frozen {
		return nil, nil
	}
	e.toast(fmt.Sprintf("This %s has been frozen by a moderator.", ref.Noun()))
	return rejected(RejectFrozen), nil
}

func (e *Engine) toggleLock(ref target.Ref) actionFunc {
	return func(ctx context.Context) (*Result, error) {
		if r, err := e.ensureThawed(ctx, ref); r != nil || err != nil {
			return r, err
		}
		thing, err := e.Platform.GetThing(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", ref, err)
		}
		ids := actionsByType[ref.Type]
		res := &Result{URL: FormatPermalink(thing.Permalink), Target: ref, Performed: true}
		if thing.Locked {
			if err := e.Platform.Unlock(ctx, ref); err != nil {
				return nil, fmt.Errorf("unlocking %s: %w", ref, err)
			}
			e.toast(fmt.Sprintf("%s the %s is unlocked.", UnlockPrefix(), ref.Noun()))
			res.ActionID = ids.Unlock
		} else {
			if err := e.Platform.Lock(ctx, ref); err != nil {
				return nil, fmt.Errorf("locking %s: %w", ref, err)
			}
			e.toast(fmt.Sprintf("%s the %s is locked.", LockPrefix(), ref.Noun()))
			res.ActionID = ids.Lock
		}
		return res, nil
	}
}

func (e *Engine) toggleSticky(ref target.Ref) actionFunc {
	return func(ctx context.Context) (*Result, error) {
		if r, err := e.ensureThawed(ctx, ref); r != nil || err != nil {
			return r, err
		}
		thing, err := e.Platform.GetThing(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", ref, err)
		}
		if thing.Stickied {
			if err := e.Platform.Unsticky(ctx, ref); err != nil {
				return nil, fmt.Errorf("unstickying %s: %w", ref, err)
			}
			e.toast("Post removed from Highlights.")
		} else {
			if err := e.Platform.Sticky(ctx, ref, StickyPosition); err != nil {
				return nil, fmt.Errorf("stickying %s: %w", ref, err)
			}
			e.toast("Post added to Highlights.")
		}
		return &Result{
			ActionID:  actionlog.PostStickyToggle,
			URL:       FormatPermalink(thing.Permalink),
			Target:    ref,
			Performed: true,
		}, nil
	}
}

func (e *Engine) remove(ref target.Ref) actionFunc {
	return func(ctx context.Context) (*Result, error) {
		if r, err := e.ensureThawed(ctx, ref); r != nil || err != nil {
			return r, err
		}
		thing, err := e.Platform.GetThing(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", ref, err)
		}
		if thing.Removed {
			e.toast(fmt.Sprintf("%s is already removed.", capitalNoun(ref)))
			return &Result{Target: ref}, nil
		}
		if err := e.Platform.Remove(ctx, ref); err != nil {
			return nil, fmt.Errorf("removing %s: %w", ref, err)
		}
		e.toast(fmt.Sprintf("%s the %s is removed.", RemovePrefix(), ref.Noun()))
		return &Result{
			ActionID:  actionsByType[ref.Type].Remove,
			URL:       FormatPermalink(thing.Permalink),
			Target:    ref,
			Performed: true,
		}, nil
	}
}

func (e *Engine) restore(ref target.Ref) actionFunc {
	return func(ctx context.Context) (*Result, error) {
		if r, err := e.ensureThawed(ctx, ref); r != nil || err != nil {
			return r, err
		}
		thing, err := e.Platform.GetThing(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("fetching %s: %w", ref, err)
		}
		if !thing.Removed {
			e.toast(fmt.Sprintf("%s is not removed.", capitalNoun(ref)))
			return &Result{Target: ref}, nil
		}
		if err := e.Platform.Approve(ctx, ref); err != nil {
			return nil, fmt.Errorf("approving %s: %w", ref, err)
		}
		e.toast(fmt.Sprintf("%s the %s is restored.", RestorePrefix(), ref.Noun()))
		return &Result{
			ActionID:  actionsByType[ref.Type].Restore,
			URL:       FormatPermalink(thing.Permalink),
			Target:    ref,
			Performed: true,
		}, nil
	}
}

func (e *Engine) toggleFreeze(ref target.Ref) actionFunc {
	return func(ctx context.Context) (*Result, error) {
		var permalink string
		thing, err := e.Platform.GetThing(ctx, ref)
		if err != nil {
			// the freeze flag lives in our store, so toggling does not depend on the platform lookup
			e.logger().Warn("failed to fetch target for freeze toggle", "target", ref.String(), "err", err)
		} else {
			permalink = thing.Permalink
		}
		frozen, err := e.Freeze.Toggle(ctx, ref)
		if err != nil {
			return nil, err
		}
		ids := actionsByType[ref.Type]
		res := &Result{
			URL:               FormatPermalink(permalink),
			Target:            ref,
			Performed:         true,
			SkipAbuseTracking: true,
		}
		if frozen {
			res.ActionID = ids.Freeze
			if ref.Type == target.Post {
				e.toast("Post frozen. Remove/Restore, Lock/Unlock, and Sticky actions are disabled.")
			} else {
				e.toast("Comment frozen. Remove/Restore and Lock/Unlock actions are disabled.")
			}
		} else {
			res.ActionID = ids.Unfreeze
			e.toast(fmt.Sprintf("%s unfrozen. Actions re-enabled.", capitalNoun(ref)))
		}
		return res, nil
	}
}

// Reports an action performed outside the guarded handlers (setup steps, or actions taken elsewhere) for abuse accounting, showing any escalation notice.
func (e *Engine) ReportAction(ctx context.Context, act history.Action) (*Result, error) {
	if e.isBanned(ctx) {
		e.toast(CurrentlyBanned)
		return e.reject(RejectBanned), ErrBanned
	}
	username := e.currentUsername(ctx)
	if username == "" {
		e.toast(LoggedOutText)
		return e.reject(RejectLoggedOut), ErrMissingUsername
	}
	act.Reason = SanitizeReason(act.Reason)
	out, err := e.Abuse.Report(ctx, username, act)
	if err != nil {
		e.logger().Error("abuse tracking failed", "username", username, "action", act.Action, "err", err)
		return failed(err), err
	}
	if out.Notice != "" {
		e.toast(out.Notice)
	}
	return &Result{
		ActionID:  act.Action,
		URL:       act.URL,
		Reason:    act.Reason,
		Performed: true,
		Abuse:     out,
	}, nil
}
