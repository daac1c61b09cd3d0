package engine

import (
	"github.com/vainamoinen-app/vainamoinen/abuse"
	"github.com/vainamoinen-app/vainamoinen/target"
)

// Why a handler refused to act.
type Rejection string

const (
	RejectRole          Rejection = "role"
	RejectModerator     Rejection = "moderator"
	RejectBanned        Rejection = "banned"
	RejectLoggedOut     Rejection = "logged-out"
	RejectSingleAction  Rejection = "single-action"
	RejectFrozen        Rejection = "frozen"
	RejectDisabled      Rejection = "disabled"
	RejectExpired       Rejection = "expired"
	RejectInvalidReason Rejection = "invalid-reason"
	RejectFailed        Rejection = "failed"
)

// Outcome of one handler invocation.
type Result struct {
	ActionID string
	URL      string
	Target   target.Ref
	Reason   string
	// false when the platform state made the action a no-op (already removed, not removed)
	Performed         bool
	SkipAbuseTracking bool

	// set when the handler refused before or instead of acting
	Rejected Rejection
	// set for RejectFailed
	Err error
	// nil when the action was not reported for abuse accounting
	Abuse *abuse.Outcome
}

func rejected(r Rejection) *Result {
	return &Result{Rejected: r}
}

func failed(err error) *Result {
	return &Result{Rejected: RejectFailed, Err: err}
}
