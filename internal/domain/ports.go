package domain

import "context"

// Scope is a named partition of the world, used to narrow recipients.
type Scope struct {
	Name  string
	Biome string
}

type ActorDirectory interface {
	// FindActor resolves an online actor by name, case-insensitively.
	FindActor(ctx context.Context, name string) (Actor, bool)
	OnlineActors(ctx context.Context) []Actor
}

type ScopeDirectory interface {
	FindScope(ctx context.Context, name string) (Scope, bool)
	ActorsIn(ctx context.Context, scope Scope) []Actor
}

// TextFormatter renders markup typed by users into displayable text.
type TextFormatter interface {
	Render(markup string) string
}

type CommandRecordPublisher interface {
	PublishCommandRecord(ctx context.Context, record CommandRecord)
}

type CommandLogRepository interface {
	SaveCommandRecord(ctx context.Context, record *CommandRecord) error
	ListCommandRecords(ctx context.Context, limit int) ([]*CommandRecord, error)
}
