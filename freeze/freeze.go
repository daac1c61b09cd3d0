// Per-target freeze flag which suspends normal moderation actions on a post or comment.
package freeze

import (
	"context"
	"fmt"

	"github.com/vainamoinen-app/vainamoinen/kvstore"
	"github.com/vainamoinen-app/vainamoinen/target"
)

const Prefix = "freeze:"

func Key(ref target.Ref) string {
	return Prefix + ref.String()
}

var frozenMarker = []byte("true")

type Gate struct {
	// nil means the store is unavailable: nothing is frozen, and mutations fail
	KV kvstore.Store
}

func NewGate(kv kvstore.Store) *Gate {
	return &Gate{KV: kv}
}

// Any stored value other than JSON false, null, zero, or empty string counts as frozen.
func (g *Gate) IsFrozen(ctx context.Context, ref target.Ref) (bool, error) {
	if g.KV == nil {
		return false, nil
	}
	raw, err := g.KV.Get(ctx, Key(ref))
	if err != nil {
		return false, fmt.Errorf("checking freeze state of %s: %w", ref, err)
	}
	return truthy(raw), nil
}

func (g *Gate) SetFrozen(ctx context.Context, ref target.Ref, frozen bool) error {
	if g.KV == nil {
		return kvstore.ErrUnavailable
	}
	var err error
	if frozen {
		err = g.KV.Put(ctx, Key(ref), frozenMarker)
	} else {
		err = g.KV.Delete(ctx, Key(ref))
	}
	if err != nil {
		return fmt.Errorf("updating freeze state of %s: %w", ref, err)
	}
	return nil
}

// Flips the freeze state and returns the new state.
func (g *Gate) Toggle(ctx context.Context, ref target.Ref) (bool, error) {
	if g.KV == nil {
		return false, kvstore.ErrUnavailable
	}
	frozen, err := g.IsFrozen(ctx, ref)
	if err != nil {
		return false, err
	}
	if err := g.SetFrozen(ctx, ref, !frozen); err != nil {
		return false, err
	}
	return !frozen, nil
}

func truthy(raw []byte) bool {
	switch string(raw) {
	case "", "false", "null", "0", `""`:
		return false
	}
	return true
}
