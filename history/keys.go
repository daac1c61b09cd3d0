package history

const (
	CurrentPrefix = "actions:"
	LegacyPrefix  = "abuse:"
)

var (
	IndexKey       = CurrentPrefix + "index"
	LegacyIndexKey = LegacyPrefix + "index"
)

func HistoryKey(username string) string {
	return CurrentPrefix + username
}

func CountKey(username string) string {
	return CurrentPrefix + "count:" + username
}

func LegacyHistoryKey(username string) string {
	return LegacyPrefix + username
}

func LegacyCountKey(username string) string {
	return LegacyPrefix + "count:" + username
}
