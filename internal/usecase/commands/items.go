package commands

import (
	"context"
	"fmt"

	"simplix/internal/domain"
)

const (
	PermissionRename = "simplix.rename"
	PermissionLore   = "simplix.lore"
)

var errEmptyHand = Fail("You must be holding an item.")

func (b *builtins) renameCommand() Definition {
	return Definition{
		Name:        "rename",
		Description: "Renames the item in the main hand.",
		Permission:  PermissionRename,
		Arguments: []ArgumentSpec{
			{Name: "name", Type: TypeString, Required: true, Greedy: true},
		},
		Flags:   []*FlagSpec{TargetFlag},
		Handler: b.rename,
	}
}

func (b *builtins) rename(ctx context.Context, c *Context) error {
	target, err := ResolveTarget(c)
	if err != nil {
		return err
	}
	raw, _ := ArgValue[string](c, "name")
	name := c.Render(raw)

	var previous string
	_, err = b.items.UpdateHeldItem(ctx, target.ID(), domain.HandMain, func(item domain.Item) (domain.Item, error) {
		if item.IsEmpty() {
			return item, errEmptyHand
		}
		previous = item.Label()
		item.DisplayName = name
		return item, nil
	})
	if err != nil {
		return err
	}
	return c.Reply(ctx, "You have renamed %s to %s.", previous, name)
}

func (b *builtins) editLoreCommand() Definition {
	return Definition{
		Name:        "editLore",
		Description: "Adds, replaces or removes lore lines on a held item.",
		Permission:  PermissionLore,
		Arguments: []ArgumentSpec{
			{Name: "lore", Type: TypeString, Greedy: true},
		},
		Flags: []*FlagSpec{
			{
				Name:        "line",
				Aliases:     []string{"l"},
				Description: "The lore line to replace or remove, starting at 0.",
				Value:       &ArgumentSpec{Name: "line", Type: TypeInteger},
			},
			{Name: "remove", Aliases: []string{"r"}, Description: "Remove the selected line."},
			{Name: "offhand", Aliases: []string{"o"}, Description: "Edit the item in the off hand."},
			TargetFlag,
		},
		Handler: b.editLore,
	}
}

func (b *builtins) editLore(ctx context.Context, c *Context) error {
	target, err := ResolveTarget(c)
	if err != nil {
		return err
	}
	line, hasLine := FlagValue[int](c, "line")
	removing := c.HasFlag("remove")
	hand := domain.HandMain
	if c.HasFlag("offhand") {
		hand = domain.HandOff
	}
	raw, hasLore := ArgValue[string](c, "lore")

	if removing && !hasLine {
		return Fail("You must provide a line number to remove.")
	}
	if !removing && !hasLore {
		return Fail("You must provide lore to add.")
	}
	rendered := c.Render(raw)

	var message string
	_, err = b.items.UpdateHeldItem(ctx, target.ID(), hand, func(item domain.Item) (domain.Item, error) {
		if item.IsEmpty() {
			return item, errEmptyHand
		}
		if hasLine && (line < 0 || line >= len(item.Lore)) {
			return item, Fail("Selected item doesn't have lore line %d.", line)
		}
		switch {
		case removing:
			removed := item.Lore[line]
			item.Lore = append(item.Lore[:line:line], item.Lore[line+1:]...)
			message = fmt.Sprintf("Removed line [%s] from %s.", removed, item.Label())
		case !hasLine:
			item.Lore = append(item.Lore, rendered)
			message = fmt.Sprintf("Added line [%s] to %s.", rendered, item.Label())
		default:
			replaced := item.Lore[line]
			item.Lore[line] = rendered
			message = fmt.Sprintf("Replaced line [%s] with [%s] in %s.", replaced, rendered, item.Label())
		}
		return item, nil
	})
	if err != nil {
		return err
	}
	return c.Reply(ctx, "%s", message)
}
