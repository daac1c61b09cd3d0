package actionlog

// Stable action identifiers. These strings are persisted in logs and counters, so must never change.
const (
	PostLock         = "post-lock"
	PostUnlock       = "post-unlock"
	PostRemove       = "post-remove"
	PostRestore      = "post-restore"
	PostStickyToggle = "post-sticky-toggle"
	PostFreeze       = "post-freeze"
	PostUnfreeze     = "post-unfreeze"

	CommentLock     = "comment-lock"
	CommentUnlock   = "comment-unlock"
	CommentRemove   = "comment-remove"
	CommentRestore  = "comment-restore"
	CommentFreeze   = "comment-freeze"
	CommentUnfreeze = "comment-unfreeze"

	BanHourly       = "ban-hourly"
	BanDaily        = "ban-daily"
	InitializeFlair = "initialize-flair"
	WriteAutomod    = "write-automod"
	InitialSetup    = "initial-setup"
)

// Combined counters from before lock/remove were split into separate actions.
var LegacyRemoveCounters = []string{"post-remove-toggle", "comment-remove-toggle"}

var freezeActions = map[string]bool{
	PostFreeze:      true,
	PostUnfreeze:    true,
	CommentFreeze:   true,
	CommentUnfreeze: true,
}

var adminActions = map[string]bool{
	BanHourly:       true,
	BanDaily:        true,
	InitializeFlair: true,
	WriteAutomod:    true,
	InitialSetup:    true,
}

func IsFreezeAction(action string) bool {
	return freezeActions[action]
}

func IsAdminMarker(action string) bool {
	return adminActions[action]
}

// Reports whether entries with this action are left out of hourly/daily abuse counts. Entries without an action (legacy bare timestamps) always count.
func IgnoredForAbuse(action string) bool {
	return freezeActions[action] || adminActions[action]
}
