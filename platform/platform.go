// Capabilities consumed from the hosting community platform: identity of the acting user, ban status and ban issuance, precomputed roles, and the lock/remove/sticky operations on posts and comments.
package platform

import (
	"context"
	"errors"

	"github.com/vainamoinen-app/vainamoinen/target"
)

var ErrUnsupported = errors.New("operation not supported by platform")

// Delegated role, derived by the platform from the member's flair.
type Role int

const (
	RoleNone Role = iota
	RoleBaby
	RoleMain
)

func (r Role) String() string {
	switch r {
	case RoleBaby:
		return "baby"
	case RoleMain:
		return "main"
	default:
		return "none"
	}
}

type BanRequest struct {
	Username     string
	DurationDays int
	Reason       string
	Note         string
	Message      string
}

type BanChecker interface {
	IsBanned(ctx context.Context, username string) (bool, error)
}

type Banner interface {
	BanUser(ctx context.Context, req BanRequest) error
}

type Identity interface {
	// Returns "" when there is no logged in user.
	CurrentUsername(ctx context.Context) (string, error)
}

type Roles interface {
	Role(ctx context.Context) (Role, error)
	IsModerator(ctx context.Context) (bool, error)
}

// Current platform state of a post or comment.
type Thing struct {
	Ref       target.Ref
	Locked    bool
	Removed   bool
	Stickied  bool
	Permalink string
}

type Things interface {
	GetThing(ctx context.Context, ref target.Ref) (*Thing, error)
	Lock(ctx context.Context, ref target.Ref) error
	Unlock(ctx context.Context, ref target.Ref) error
	Remove(ctx context.Context, ref target.Ref) error
	Approve(ctx context.Context, ref target.Ref) error
	Sticky(ctx context.Context, ref target.Ref, position int) error
	Unsticky(ctx context.Context, ref target.Ref) error
}

type Platform interface {
	Identity
	BanChecker
	Banner
	Roles
	Things
}
