package engine

// Installation settings.
type Config struct {
	// remove/restore handlers are available for posts
	RemoveRestorePosts bool
	// remove/restore handlers are available for comments
	RemoveRestoreComments bool

	// zero values fall back to the abuse package defaults
	BanDurationDays int
	BanReason       string
	BanNote         string
	BanMessage      string
}

func DefaultConfig() Config {
	return Config{
		RemoveRestorePosts:    true,
		RemoveRestoreComments: true,
	}
}
