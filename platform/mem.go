package platform

import (
	"context"
	"fmt"
	"sync"

	"github.com/vainamoinen-app/vainamoinen/target"
)

// In-memory platform, for tests and local experimentation.
type MemPlatform struct {
	mu sync.Mutex

	Username   string
	UserRole   Role
	Moderator  bool
	Banned     map[string]bool
	BanCalls   []BanRequest
	ThingState map[target.Ref]*Thing

	// injected failures
	BanErr    error
	StatusErr error
	ThingErr  error
}

var _ Platform = (*MemPlatform)(nil)

func NewMemPlatform(username string) *MemPlatform {
	return &MemPlatform{
		Username:   username,
		Banned:     make(map[string]bool),
		ThingState: make(map[target.Ref]*Thing),
	}
}

// Adds a post or comment with the given permalink.
func (p *MemPlatform) AddThing(ref target.Ref, permalink string) *Thing {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := &Thing{Ref: ref, Permalink: permalink}
	p.ThingState[ref] = t
	return t
}

func (p *MemPlatform) CurrentUsername(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Username, nil
}

func (p *MemPlatform) IsBanned(ctx context.Context, username string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.StatusErr != nil {
		return false, p.StatusErr
	}
	return p.Banned[username], nil
}

func (p *MemPlatform) BanUser(ctx context.Context, req BanRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.BanCalls = append(p.BanCalls, req)
	if p.BanErr != nil {
		return p.BanErr
	}
	p.Banned[req.Username] = true
	return nil
}

func (p *MemPlatform) Role(ctx context.Context) (Role, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.UserRole, nil
}

func (p *MemPlatform) IsModerator(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Moderator, nil
}

func (p *MemPlatform) thing(ref target.Ref) (*Thing, error) {
	if p.ThingErr != nil {
		return nil, p.ThingErr
	}
	t, ok := p.ThingState[ref]
	if !ok {
		return nil, fmt.Errorf("%s not found", ref)
	}
	return t, nil
}

func (p *MemPlatform) GetThing(ctx context.Context, ref target.Ref) (*Thing, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, err := p.thing(ref)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (p *MemPlatform) update(ref target.Ref, fn func(t *Thing)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, err := p.thing(ref)
	if err != nil {
		return err
	}
	fn(t)
	return nil
}

func (p *MemPlatform) Lock(ctx context.Context, ref target.Ref) error {
	return p.update(ref, func(t *Thing) { t.Locked = true })
}

func (p *MemPlatform) Unlock(ctx context.Context, ref target.Ref) error {
	return p.update(ref, func(t *Thing) { t.Locked = false })
}

func (p *MemPlatform) Remove(ctx context.Context, ref target.Ref) error {
	return p.update(ref, func(t *Thing) { t.Removed = true })
}

func (p *MemPlatform) Approve(ctx context.Context, ref target.Ref) error {
	return p.update(ref, func(t *Thing) { t.Removed = false })
}

func (p *MemPlatform) Sticky(ctx context.Context, ref target.Ref, position int) error {
	return p.update(ref, func(t *Thing) { t.Stickied = true })
}

func (p *MemPlatform) Unsticky(ctx context.Context, ref target.Ref) error {
	return p.update(ref, func(t *Thing) { t.Stickied = false })
}

func (p *MemPlatform) BanCallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.BanCalls)
}
