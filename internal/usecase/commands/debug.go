package commands

import (
	"context"

	"simplix/internal/domain"
)

func (b *builtins) blockInfoCommand() Definition {
	return Definition{
		Name:         "debug blockInfo",
		Description:  "Describes the block you are looking at.",
		RequireActor: true,
		Handler:      b.blockInfo,
	}
}

func (b *builtins) blockInfo(ctx context.Context, c *Context) error {
	actor, ok := domain.AsActor(c.Issuer)
	if !ok {
		return InvalidSender("only players can look at blocks")
	}
	block, found, err := actor.TargetBlock(ctx, b.targetRange)
	if err != nil {
		return err
	}
	if !found {
		return c.Reply(ctx, "No block in range")
	}

	lines := []string{
		"Block: " + block.String(),
		"Block Type: " + block.Type,
		"Block Data: " + block.Data,
		"Block State: " + block.State,
		"Block Location: " + block.Location.String(),
		"Block Biome: " + block.Biome,
		"Block liquidType: " + block.Liquid,
	}
	for _, line := range lines {
		if err := c.Reply(ctx, "%s", line); err != nil {
			return err
		}
	}
	return nil
}
