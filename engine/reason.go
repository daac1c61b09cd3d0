package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/vainamoinen-app/vainamoinen/actionlog"
	"github.com/vainamoinen-app/vainamoinen/kvstore"
	"github.com/vainamoinen-app/vainamoinen/target"
)

const (
	ReasonMaxLength     = 30
	PendingReasonPrefix = "pending:reason:"

	defaultReasonDescription = "Provide a short reason (30 characters max)."
)

var (
	nonPrintable = regexp.MustCompile(`[^\x09\x0A\x0D\x20-\x7E]`)
	lineBreaks   = regexp.MustCompile(`[\r\n\t]+`)
)

// Cuts a user supplied reason to ReasonMaxLength printable ASCII characters on one line. Returns "" if nothing is left.
func SanitizeReason(reason string) string {
	trimmed := strings.TrimSpace(reason)
	if r := []rune(trimmed); len(r) > ReasonMaxLength {
		trimmed = string(r[:ReasonMaxLength])
	}
	if trimmed == "" {
		return ""
	}
	ascii := nonPrintable.ReplaceAllString(trimmed, "")
	return strings.TrimSpace(lineBreaks.ReplaceAllString(ascii, " "))
}

func PendingReasonKey(username string) string {
	return PendingReasonPrefix + username
}

// Action awaiting a reason from the acting user.
type PendingReason struct {
	Action      string      `json:"action"`
	TargetID    string      `json:"targetId"`
	TargetType  target.Type `json:"targetType"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
}

// What to ask the user.
type ReasonPrompt struct {
	Title       string
	Description string
}

var reasonActionTypes = map[string]target.Type{
	actionlog.PostLock:       target.Post,
	actionlog.CommentLock:    target.Comment,
	actionlog.PostRemove:     target.Post,
	actionlog.PostRestore:    target.Post,
	actionlog.CommentRemove:  target.Comment,
	actionlog.CommentRestore: target.Comment,
}

// Stores a pending reason payload for the acting user and returns the prompt to show. Lock prompts reflect the current lock state; remove/restore prompts are refused when the feature is disabled.
func (e *Engine) BeginReasonAction(ctx context.Context, action, targetID string) (*ReasonPrompt, error) {
	typ, ok := reasonActionTypes[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	ref := target.NewRef(typ, targetID)

	prompt := &ReasonPrompt{Description: defaultReasonDescription}
	switch action {
	case actionlog.PostLock, actionlog.CommentLock:
		thing, err := e.Platform.GetThing(ctx, ref)
		if err != nil {
			e.logger().Error("failed to open reason prompt", "action", action, "target", ref.String(), "err", err)
			e.toast("Failed to toggle lock")
			return nil, fmt.Errorf("fetching %s: %w", ref, err)
		}
		state, verb := "Unlocked", "lock"
		if thing.Locked {
			state, verb = "Locked", "unlock"
		}
		prompt.Title = "Lock/Unlock Reason - Currently: " + state
		prompt.Description = fmt.Sprintf("Provide a short reason for %s (30 characters max).", verb)
	case actionlog.PostRemove, actionlog.CommentRemove:
		if !e.ensureRemoveRestoreEnabled(typ) {
			return nil, ErrFeatureDisabled
		}
		prompt.Title = "Reason for Remove"
	default:
		if !e.ensureRemoveRestoreEnabled(typ) {
			return nil, ErrFeatureDisabled
		}
		prompt.Title = "Reason for Restore"
	}

	username := e.currentUsername(ctx)
	if username == "" {
		e.toast(LoggedOutText)
		return nil, ErrMissingUsername
	}
	if e.KV == nil {
		e.toast("KV Store unavailable.")
		return nil, kvstore.ErrUnavailable
	}
	payload := PendingReason{
		Action:      action,
		TargetID:    targetID,
		TargetType:  typ,
		Title:       prompt.Title,
		Description: prompt.Description,
	}
	if err := kvstore.PutJSON(ctx, e.KV, PendingReasonKey(username), payload); err != nil {
		e.logger().Error("failed to save pending reason", "username", username, "action", action, "err", err)
		e.toast("Failed to perform action.")
		return nil, err
	}
	return prompt, nil
}

// Completes the acting user's pending action with the supplied reason. The pending payload is consumed even when the action is then refused.
func (e *Engine) SubmitReason(ctx context.Context, reason string) *Result {
	reason = SanitizeReason(reason)
	if reason == "" {
		e.toast(fmt.Sprintf("Please provide a reason (max %d characters).", ReasonMaxLength))
		return e.reject(RejectInvalidReason)
	}
	username := e.currentUsername(ctx)
	if username == "" {
		e.toast(LoggedOutText)
		return e.reject(RejectLoggedOut)
	}
	payload, err := e.loadPendingReason(ctx, username)
	if err != nil {
		e.logger().Error("failed to load pending reason", "username", username, "err", err)
	}
	if payload == nil {
		e.toast("This request expired. Please retry.")
		return e.reject(RejectExpired)
	}
	if err := e.KV.Delete(ctx, PendingReasonKey(username)); err != nil {
		e.logger().Error("failed to delete pending reason", "username", username, "err", err)
	}

	switch payload.Action {
	case actionlog.PostLock:
		return e.TogglePostLock(ctx, payload.TargetID, reason)
	case actionlog.CommentLock:
		return e.ToggleCommentLock(ctx, payload.TargetID, reason)
	case actionlog.PostRemove:
		return e.RemovePost(ctx, payload.TargetID, reason)
	case actionlog.PostRestore:
		return e.RestorePost(ctx, payload.TargetID, reason)
	case actionlog.CommentRemove:
		return e.RemoveComment(ctx, payload.TargetID, reason)
	case actionlog.CommentRestore:
		return e.RestoreComment(ctx, payload.TargetID, reason)
	}
	e.toast("Unknown action.")
	return failed(fmt.Errorf("%w: %q", ErrUnknownAction, payload.Action))
}

// Returns nil when there is no usable payload.
func (e *Engine) loadPendingReason(ctx context.Context, username string) (*PendingReason, error) {
	if e.KV == nil {
		return nil, nil
	}
	raw, err := e.KV.Get(ctx, PendingReasonKey(username))
	if err != nil || raw == nil {
		return nil, err
	}
	var p PendingReason
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, nil
	}
	if p.Action == "" || p.TargetID == "" || p.TargetType == "" {
		return nil, nil
	}
	return &p, nil
}
