package abuse

import (
	"github.com/vainamoinen-app/vainamoinen/actionlog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var actionsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vainamoinen_actions_recorded",
	Help: "Number of delegated moderation actions recorded for abuse accounting",
}, []string{"action"})

var warningsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vainamoinen_abuse_messages",
	Help: "Number of abuse escalation messages shown, by tier",
}, []string{"tier"})

var bansApplied = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vainamoinen_bans_applied",
	Help: "Number of automatic bans issued",
})

var bansFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "vainamoinen_bans_failed",
	Help: "Number of automatic ban attempts which failed",
})

var knownActions = map[string]bool{
	actionlog.PostLock:         true,
	actionlog.PostUnlock:       true,
	actionlog.PostRemove:       true,
	actionlog.PostRestore:      true,
	actionlog.PostStickyToggle: true,
	actionlog.CommentLock:      true,
	actionlog.CommentUnlock:    true,
	actionlog.CommentRemove:    true,
	actionlog.CommentRestore:   true,
	actionlog.InitializeFlair:  true,
	actionlog.WriteAutomod:     true,
	actionlog.InitialSetup:     true,
}

// bounds label cardinality
func metricAction(action string) string {
	if knownActions[action] {
		return action
	}
	return "other"
}
