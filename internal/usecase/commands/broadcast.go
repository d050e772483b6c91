package commands

import (
	"context"

	"github.com/samber/lo"

	"simplix/internal/domain"
)

const PermissionBroadcast = "simplix.broadcast"

func (b *builtins) broadcastCommand() Definition {
	return Definition{
		Name:        "broadcast",
		Aliases:     []string{"bc", "announce"},
		Description: "Sends a message to every online player, or those in one world.",
		Permission:  PermissionBroadcast,
		Arguments: []ArgumentSpec{
			{Name: "message", Type: TypeString, Greedy: true},
		},
		Flags: []*FlagSpec{
			{
				Name:        "world",
				Aliases:     []string{"w"},
				Description: "Only players in this world receive the message.",
				Value:       &ArgumentSpec{Name: "world", Type: TypeScope},
			},
			{
				Name:        "permission",
				Aliases:     []string{"p"},
				Description: "Only players holding this permission receive the message.",
				Value:       &ArgumentSpec{Name: "permission", Type: TypeString},
			},
		},
		Handler: b.broadcast,
	}
}

func (b *builtins) broadcast(ctx context.Context, c *Context) error {
	message, ok := ArgValue[string](c, "message")
	if !ok {
		return Fail("You must provide a message to broadcast.")
	}

	var recipients []domain.Actor
	if scope, ok := FlagValue[domain.Scope](c, "world"); ok {
		recipients = b.scopes.ActorsIn(ctx, scope)
	} else {
		recipients = b.actors.OnlineActors(ctx)
	}
	if node, ok := FlagValue[string](c, "permission"); ok {
		recipients = lo.Filter(recipients, func(a domain.Actor, _ int) bool {
			return a.HasPermission(node)
		})
	}

	text := c.Render(message)
	for _, recipient := range recipients {
		if err := recipient.SendMessage(ctx, text); err != nil {
			b.logger.Printf("broadcast: send to %s: %v", recipient.Name(), err)
		}
	}
	return nil
}
