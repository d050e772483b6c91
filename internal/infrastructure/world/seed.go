package world

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"simplix/internal/domain"
)

// Seed is the YAML description of a world loaded at boot.
type Seed struct {
	DefaultScope       string       `yaml:"default_scope"`
	DefaultPermissions []string     `yaml:"default_permissions"`
	Scopes             []ScopeSeed  `yaml:"scopes"`
	Players            []PlayerSeed `yaml:"players"`
}

type ScopeSeed struct {
	Name   string      `yaml:"name"`
	Biome  string      `yaml:"biome"`
	Blocks []BlockSeed `yaml:"blocks"`
}

type BlockSeed struct {
	Type   string `yaml:"type"`
	Data   string `yaml:"data"`
	State  string `yaml:"state"`
	Biome  string `yaml:"biome"`
	Liquid string `yaml:"liquid"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Z      int    `yaml:"z"`
}

type PlayerSeed struct {
	Name        string          `yaml:"name"`
	Scope       string          `yaml:"scope"`
	Permissions []string        `yaml:"permissions"`
	Position    [3]int          `yaml:"position"`
	Facing      string          `yaml:"facing"`
	MainHand    *ItemSeed       `yaml:"main_hand"`
	OffHand     *ItemSeed       `yaml:"off_hand"`
	Attributes  []AttributeSeed `yaml:"attributes"`
}

type ItemSeed struct {
	Type        string   `yaml:"type"`
	DisplayName string   `yaml:"display_name"`
	Lore        []string `yaml:"lore"`
}

type AttributeSeed struct {
	Name      string                     `yaml:"name"`
	Base      float64                    `yaml:"base"`
	Modifiers []domain.AttributeModifier `yaml:"modifiers"`
}

// StateStore is where seeded items and attributes are written.
type StateStore interface {
	HeldItem(ctx context.Context, actorID string, hand domain.Hand) (domain.Item, error)
	SetHeldItem(ctx context.Context, actorID string, hand domain.Hand, item domain.Item) error
	Attribute(ctx context.Context, actorID string, attr domain.Attribute) (domain.AttributeInstance, bool, error)
	SetAttribute(ctx context.Context, actorID string, inst domain.AttributeInstance) error
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("world: read seed: %w", err)
	}
	return ParseSeed(data)
}

func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("world: parse seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	if len(s.Scopes) == 0 {
		return fmt.Errorf("world: seed has no scopes")
	}
	scopes := make(map[string]struct{}, len(s.Scopes))
	for _, sc := range s.Scopes {
		if strings.TrimSpace(sc.Name) == "" {
			return fmt.Errorf("world: scope without a name")
		}
		if _, dup := scopes[key(sc.Name)]; dup {
			return fmt.Errorf("world: duplicate scope %q", sc.Name)
		}
		scopes[key(sc.Name)] = struct{}{}
	}
	if s.DefaultScope != "" {
		if _, ok := scopes[key(s.DefaultScope)]; !ok {
			return fmt.Errorf("world: default scope %q is not declared", s.DefaultScope)
		}
	}

	players := make(map[string]struct{}, len(s.Players))
	for _, p := range s.Players {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("world: player without a name")
		}
		if _, dup := players[key(p.Name)]; dup {
			return fmt.Errorf("world: duplicate player %q", p.Name)
		}
		players[key(p.Name)] = struct{}{}
		if _, ok := scopes[key(p.Scope)]; !ok {
			return fmt.Errorf("world: player %q is in unknown scope %q", p.Name, p.Scope)
		}
		if _, err := ParseDirection(p.Facing); err != nil {
			return fmt.Errorf("world: player %q: %w", p.Name, err)
		}
		for _, a := range p.Attributes {
			if _, ok := domain.ParseAttribute(a.Name); !ok {
				return fmt.Errorf("world: player %q has unknown attribute %q", p.Name, a.Name)
			}
		}
	}
	return nil
}

// Apply builds scopes, blocks and profiles in w, then writes items and
// attributes that are not already stored.
func (s *Seed) Apply(ctx context.Context, w *World, store StateStore) error {
	for _, sc := range s.Scopes {
		w.AddScope(domain.Scope{Name: sc.Name, Biome: sc.Biome})
		for _, b := range sc.Blocks {
			block := domain.Block{
				Type:     b.Type,
				Data:     b.Data,
				State:    b.State,
				Biome:    b.Biome,
				Liquid:   b.Liquid,
				Location: domain.Location{Scope: sc.Name, X: b.X, Y: b.Y, Z: b.Z},
			}
			if block.Data == "" {
				block.Data = block.Type
			}
			if block.Liquid == "" {
				block.Liquid = "none"
			}
			if err := w.PlaceBlock(block); err != nil {
				return err
			}
		}
	}
	if err := w.SetDefaults(s.DefaultScope, s.DefaultPermissions); err != nil {
		return err
	}

	for _, p := range s.Players {
		facing, _ := ParseDirection(p.Facing)
		profile := Profile{
			Name:        p.Name,
			Scope:       p.Scope,
			Permissions: p.Permissions,
			Position:    domain.Location{Scope: p.Scope, X: p.Position[0], Y: p.Position[1], Z: p.Position[2]},
			Facing:      facing,
		}
		if err := w.AddProfile(profile); err != nil {
			return err
		}
		if store == nil {
			continue
		}
		if err := seedItems(ctx, store, key(p.Name), p); err != nil {
			return err
		}
		if err := seedAttributes(ctx, store, key(p.Name), p.Attributes); err != nil {
			return err
		}
	}
	return nil
}

func seedItems(ctx context.Context, store StateStore, actorID string, p PlayerSeed) error {
	for hand, seed := range map[domain.Hand]*ItemSeed{domain.HandMain: p.MainHand, domain.HandOff: p.OffHand} {
		if seed == nil {
			continue
		}
		current, err := store.HeldItem(ctx, actorID, hand)
		if err != nil {
			return err
		}
		if !current.IsEmpty() {
			continue
		}
		item := domain.Item{Type: seed.Type, DisplayName: seed.DisplayName, Lore: seed.Lore}
		if err := store.SetHeldItem(ctx, actorID, hand, item); err != nil {
			return err
		}
	}
	return nil
}

func seedAttributes(ctx context.Context, store StateStore, actorID string, seeds []AttributeSeed) error {
	for _, a := range seeds {
		attr, _ := domain.ParseAttribute(a.Name)
		if _, ok, err := store.Attribute(ctx, actorID, attr); err != nil {
			return err
		} else if ok {
			continue
		}
		inst := domain.AttributeInstance{Attribute: attr, Base: a.Base, Modifiers: a.Modifiers}
		if err := store.SetAttribute(ctx, actorID, inst); err != nil {
			return err
		}
	}
	return nil
}
