package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vainamoinen-app/vainamoinen/kvstore"
)

const banKeyPrefix = "bans:"

type banRecord struct {
	Until  int64  `json:"until"`
	Reason string `json:"reason,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Ban list persisted in a KV store, for running without a platform connection. Bans lapse after their duration.
type KVBanList struct {
	KV  kvstore.Store
	Now func() time.Time
}

var (
	_ BanChecker = (*KVBanList)(nil)
	_ Banner     = (*KVBanList)(nil)
)

func NewKVBanList(kv kvstore.Store) *KVBanList {
	return &KVBanList{KV: kv, Now: time.Now}
}

func (b *KVBanList) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func (b *KVBanList) IsBanned(ctx context.Context, username string) (bool, error) {
	raw, err := b.KV.Get(ctx, banKeyPrefix+username)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	var rec banRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		// unreadable ban record is treated as no ban
		return false, nil
	}
	return rec.Until > b.now().UnixMilli(), nil
}

func (b *KVBanList) BanUser(ctx context.Context, req BanRequest) error {
	if req.Username == "" {
		return fmt.Errorf("ban request missing username")
	}
	until := b.now().Add(time.Duration(req.DurationDays) * 24 * time.Hour)
	return kvstore.PutJSON(ctx, b.KV, banKeyPrefix+req.Username, banRecord{
		Until:  until.UnixMilli(),
		Reason: req.Reason,
		Note:   req.Note,
	})
}

func (b *KVBanList) Unban(ctx context.Context, username string) error {
	return b.KV.Delete(ctx, banKeyPrefix+username)
}
