package world

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"simplix/internal/domain"
)

var (
	ErrAlreadyOnline = errors.New("world: actor already online")
	ErrUnknownScope  = errors.New("world: unknown scope")
)

// Outbox delivers text to the session of an online actor.
type Outbox interface {
	SendTo(ctx context.Context, actorID, text string) error
}

// Profile is what the world knows about an actor before it joins.
type Profile struct {
	Name        string
	Scope       string
	Permissions []string
	Position    domain.Location
	Facing      Direction
}

type scopeState struct {
	scope  domain.Scope
	blocks map[domain.Location]domain.Block
}

// World tracks online actors, the scopes they live in and the blocks of each
// scope.
type World struct {
	out Outbox

	mu           sync.RWMutex
	scopes       map[string]*scopeState
	profiles     map[string]Profile
	online       map[string]*Player
	defaultScope string
	defaultPerms []string
}

func New(out Outbox) *World {
	return &World{
		out:      out,
		scopes:   make(map[string]*scopeState),
		profiles: make(map[string]Profile),
		online:   make(map[string]*Player),
	}
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// AddScope creates or replaces a scope. The first scope added becomes the
// default for unknown actors.
func (w *World) AddScope(scope domain.Scope) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scopes[key(scope.Name)] = &scopeState{scope: scope, blocks: make(map[domain.Location]domain.Block)}
	if w.defaultScope == "" {
		w.defaultScope = scope.Name
	}
}

// SetDefaults configures what actors without a profile get on join.
func (w *World) SetDefaults(scope string, permissions []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if scope != "" {
		if _, ok := w.scopes[key(scope)]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownScope, scope)
		}
		w.defaultScope = scope
	}
	w.defaultPerms = append([]string(nil), permissions...)
	return nil
}

// PlaceBlock puts a block at its location. The location scope must exist.
func (w *World) PlaceBlock(block domain.Block) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.scopes[key(block.Location.Scope)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScope, block.Location.Scope)
	}
	block.Location.Scope = st.scope.Name
	if block.Biome == "" {
		block.Biome = st.scope.Biome
	}
	st.blocks[block.Location] = block
	return nil
}

func (w *World) BlockAt(loc domain.Location) (domain.Block, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st, ok := w.scopes[key(loc.Scope)]
	if !ok {
		return domain.Block{}, false
	}
	loc.Scope = st.scope.Name
	block, ok := st.blocks[loc]
	return block, ok
}

func (w *World) AddProfile(p Profile) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.scopes[key(p.Scope)]; !ok {
		return fmt.Errorf("%w: %s for %s", ErrUnknownScope, p.Scope, p.Name)
	}
	w.profiles[key(p.Name)] = p
	return nil
}

// Join brings an actor online, from its profile when one exists.
func (w *World) Join(name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("world: empty actor name")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.online[key(name)]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOnline, name)
	}
	profile, ok := w.profiles[key(name)]
	if !ok {
		if w.defaultScope == "" {
			return nil, fmt.Errorf("%w: no default scope", ErrUnknownScope)
		}
		profile = Profile{
			Name:        name,
			Scope:       w.defaultScope,
			Permissions: w.defaultPerms,
			Facing:      North,
		}
	}
	p := newPlayer(w, profile)
	w.online[p.ID()] = p
	return p, nil
}

// Enter is Join for callers that only need the actor.
func (w *World) Enter(name string) (domain.Actor, error) {
	p, err := w.Join(name)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (w *World) Leave(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.online, key(name))
}

func (w *World) FindActor(_ context.Context, name string) (domain.Actor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.online[key(name)]
	if !ok {
		return nil, false
	}
	return p, true
}

func (w *World) OnlineActors(_ context.Context) []domain.Actor {
	return lo.Map(w.sortedOnline(), func(p *Player, _ int) domain.Actor { return p })
}

func (w *World) sortedOnline() []*Player {
	w.mu.RLock()
	players := lo.Values(w.online)
	w.mu.RUnlock()
	sort.Slice(players, func(i, j int) bool { return players[i].ID() < players[j].ID() })
	return players
}

func (w *World) FindScope(_ context.Context, name string) (domain.Scope, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st, ok := w.scopes[key(name)]
	if !ok {
		return domain.Scope{}, false
	}
	return st.scope, true
}

func (w *World) ActorsIn(_ context.Context, scope domain.Scope) []domain.Actor {
	players := lo.Filter(w.sortedOnline(), func(p *Player, _ int) bool {
		return strings.EqualFold(p.Scope(), scope.Name)
	})
	return lo.Map(players, func(p *Player, _ int) domain.Actor { return p })
}

func (w *World) deliver(ctx context.Context, actorID, text string) error {
	if w.out == nil {
		return nil
	}
	return w.out.SendTo(ctx, actorID, text)
}

var (
	_ domain.ActorDirectory = (*World)(nil)
	_ domain.ScopeDirectory = (*World)(nil)
)
