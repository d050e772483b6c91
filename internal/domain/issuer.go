package domain

import "context"

// Issuer is anything that can submit a command line: an in-game actor or the
// server console.
type Issuer interface {
	Name() string
	HasPermission(node string) bool
	SendMessage(ctx context.Context, text string) error
}

// Actor is an in-game entity. Issuers that are not actors (the console) can
// only operate on actors through the target flag.
type Actor interface {
	Issuer
	ID() string
	Scope() string
	TargetBlock(ctx context.Context, maxDistance int) (Block, bool, error)
}

// AsActor reports whether the issuer is also an actor.
func AsActor(issuer Issuer) (Actor, bool) {
	if issuer == nil {
		return nil, false
	}
	actor, ok := issuer.(Actor)
	return actor, ok
}
