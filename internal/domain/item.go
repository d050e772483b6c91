package domain

import (
	"context"
	"strings"
)

type Hand string

const (
	HandMain Hand = "main"
	HandOff  Hand = "off"
)

const ItemTypeAir = "air"

// Item is the stack an actor holds in one hand.
type Item struct {
	Type        string
	DisplayName string
	Lore        []string
}

func (i Item) IsEmpty() bool {
	t := strings.TrimSpace(i.Type)
	return t == "" || strings.EqualFold(t, ItemTypeAir)
}

func (i Item) Clone() Item {
	out := i
	if i.Lore != nil {
		out.Lore = append([]string(nil), i.Lore...)
	}
	return out
}

// Label is what messages show for the item: its display name, else its type.
func (i Item) Label() string {
	if strings.TrimSpace(i.DisplayName) != "" {
		return i.DisplayName
	}
	return i.Type
}

// ItemMutation receives a copy of the held item and returns the item to
// store. Returning an error aborts the update without writing anything.
type ItemMutation func(Item) (Item, error)

// ItemStore owns the held items of every actor. UpdateHeldItem must apply the
// mutation atomically for a given (actor, hand) pair.
type ItemStore interface {
	HeldItem(ctx context.Context, actorID string, hand Hand) (Item, error)
	UpdateHeldItem(ctx context.Context, actorID string, hand Hand, fn ItemMutation) (Item, error)
}
