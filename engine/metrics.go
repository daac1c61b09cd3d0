package engine

import (
	"github.com/vainamoinen-app/vainamoinen/actionlog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("engine")

var guardDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "vainamoinen_guard_duration_sec",
	Help: "Duration of guarded moderation actions",
}, []string{"action"})

var guardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vainamoinen_guard_rejections",
	Help: "Number of moderation actions refused, by reason",
}, []string{"reason"})

var actionsPerformed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vainamoinen_actions_performed",
	Help: "Number of moderation actions performed on the platform",
}, []string{"action"})

var handlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vainamoinen_handler_failures",
	Help: "Number of handler invocations which failed",
}, []string{"handler"})

var notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vainamoinen_notifications_sent",
	Help: "Number of ban notifications, by outcome",
}, []string{"outcome"})

func metricAction(action string) string {
	switch action {
	case actionlog.PostLock, actionlog.PostUnlock, actionlog.PostRemove, actionlog.PostRestore,
		actionlog.PostStickyToggle, actionlog.PostFreeze, actionlog.PostUnfreeze,
		actionlog.CommentLock, actionlog.CommentUnlock, actionlog.CommentRemove,
		actionlog.CommentRestore, actionlog.CommentFreeze, actionlog.CommentUnfreeze:
		return action
	}
	return "other"
}
