package commands

import (
	"simplix/internal/domain"
)

type builtins struct {
	actors      domain.ActorDirectory
	scopes      domain.ScopeDirectory
	items       domain.ItemStore
	attributes  domain.AttributeStore
	logger      Logger
	targetRange int
}

func (b *builtins) register(r *Registry) error {
	if err := r.Register(b.broadcastCommand()); err != nil {
		return err
	}
	if err := b.registerAttributes(r); err != nil {
		return err
	}
	if err := r.Register(b.blockInfoCommand()); err != nil {
		return err
	}
	if err := r.Register(b.renameCommand()); err != nil {
		return err
	}
	return r.Register(b.editLoreCommand())
}
