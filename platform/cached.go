package platform

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Caches ban status lookups for a short TTL. Only positive and negative answers are cached; errors pass through uncached.
type CachedBanChecker struct {
	Inner BanChecker
	Cache *expirable.LRU[string, bool]
}

var _ BanChecker = (*CachedBanChecker)(nil)

func NewCachedBanChecker(inner BanChecker, capacity int, ttl time.Duration) *CachedBanChecker {
	return &CachedBanChecker{
		Inner: inner,
		Cache: expirable.NewLRU[string, bool](capacity, nil, ttl),
	}
}

func (c *CachedBanChecker) IsBanned(ctx context.Context, username string) (bool, error) {
	if v, ok := c.Cache.Get(username); ok {
		return v, nil
	}
	v, err := c.Inner.IsBanned(ctx, username)
	if err != nil {
		return false, err
	}
	c.Cache.Add(username, v)
	return v, nil
}

func (c *CachedBanChecker) Forget(username string) {
	c.Cache.Remove(username)
}
