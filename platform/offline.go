package platform

import (
	"context"

	"github.com/vainamoinen-app/vainamoinen/target"
)

// Platform for administrative tooling run outside the community platform: a fixed acting user, bans from a BanChecker/Banner pair (typically a KVBanList), and no post or comment operations.
type OfflinePlatform struct {
	Username  string
	Moderator bool
	Checker   BanChecker
	Bans      Banner
}

var _ Platform = (*OfflinePlatform)(nil)

func (p *OfflinePlatform) CurrentUsername(ctx context.Context) (string, error) {
	return p.Username, nil
}

func (p *OfflinePlatform) IsBanned(ctx context.Context, username string) (bool, error) {
	if p.Checker == nil {
		return false, nil
	}
	return p.Checker.IsBanned(ctx, username)
}

func (p *OfflinePlatform) BanUser(ctx context.Context, req BanRequest) error {
	if p.Bans == nil {
		return ErrUnsupported
	}
	if err := p.Bans.BanUser(ctx, req); err != nil {
		return err
	}
	if c, ok := p.Checker.(*CachedBanChecker); ok {
		c.Forget(req.Username)
	}
	return nil
}

func (p *OfflinePlatform) Role(ctx context.Context) (Role, error) {
	return RoleMain, nil
}

func (p *OfflinePlatform) IsModerator(ctx context.Context) (bool, error) {
	return p.Moderator, nil
}

func (p *OfflinePlatform) GetThing(ctx context.Context, ref target.Ref) (*Thing, error) {
	return nil, ErrUnsupported
}

func (p *OfflinePlatform) Lock(ctx context.Context, ref target.Ref) error     { return ErrUnsupported }
func (p *OfflinePlatform) Unlock(ctx context.Context, ref target.Ref) error   { return ErrUnsupported }
func (p *OfflinePlatform) Remove(ctx context.Context, ref target.Ref) error   { return ErrUnsupported }
func (p *OfflinePlatform) Approve(ctx context.Context, ref target.Ref) error  { return ErrUnsupported }
func (p *OfflinePlatform) Unsticky(ctx context.Context, ref target.Ref) error { return ErrUnsupported }

func (p *OfflinePlatform) Sticky(ctx context.Context, ref target.Ref, position int) error {
	return ErrUnsupported
}
