package world

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"simplix/internal/domain"
)

// Direction is a unit step through the block grid.
type Direction struct {
	DX, DY, DZ int
}

var (
	North = Direction{DZ: -1}
	South = Direction{DZ: 1}
	East  = Direction{DX: 1}
	West  = Direction{DX: -1}
	Up    = Direction{DY: 1}
	Down  = Direction{DY: -1}
)

var directions = map[string]Direction{
	"north": North,
	"south": South,
	"east":  East,
	"west":  West,
	"up":    Up,
	"down":  Down,
}

func ParseDirection(raw string) (Direction, error) {
	if strings.TrimSpace(raw) == "" {
		return North, nil
	}
	d, ok := directions[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return Direction{}, fmt.Errorf("world: unknown direction %q", raw)
	}
	return d, nil
}

// Player is an online actor.
type Player struct {
	world *World
	id    string
	name  string
	perms domain.PermissionSet

	mu       sync.RWMutex
	scope    string
	position domain.Location
	facing   Direction
}

func newPlayer(w *World, p Profile) *Player {
	pos := p.Position
	pos.Scope = p.Scope
	facing := p.Facing
	if facing == (Direction{}) {
		facing = North
	}
	return &Player{
		world:    w,
		id:       key(p.Name),
		name:     p.Name,
		perms:    domain.NewPermissionSet(p.Permissions...),
		scope:    p.Scope,
		position: pos,
		facing:   facing,
	}
}

func (p *Player) ID() string   { return p.id }
func (p *Player) Name() string { return p.name }

func (p *Player) HasPermission(node string) bool { return p.perms.Has(node) }

func (p *Player) SendMessage(ctx context.Context, text string) error {
	return p.world.deliver(ctx, p.id, text)
}

func (p *Player) Scope() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scope
}

// MoveTo places the player, possibly in another scope, facing dir.
func (p *Player) MoveTo(loc domain.Location, dir Direction) error {
	if _, ok := p.world.FindScope(context.Background(), loc.Scope); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScope, loc.Scope)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scope = loc.Scope
	p.position = loc
	p.facing = dir
	return nil
}

// TargetBlock walks from the player's position in the facing direction and
// returns the first non-air block within maxDistance steps.
func (p *Player) TargetBlock(ctx context.Context, maxDistance int) (domain.Block, bool, error) {
	p.mu.RLock()
	pos, dir := p.position, p.facing
	p.mu.RUnlock()

	for step := 1; step <= maxDistance; step++ {
		if err := ctx.Err(); err != nil {
			return domain.Block{}, false, err
		}
		loc := pos.Add(dir.DX*step, dir.DY*step, dir.DZ*step)
		block, ok := p.world.BlockAt(loc)
		if ok && !strings.EqualFold(block.Type, domain.ItemTypeAir) {
			return block, true, nil
		}
	}
	return domain.Block{}, false, nil
}

var _ domain.Actor = (*Player)(nil)
