package world

import (
	"context"
	"fmt"
	"io"
	"sync"

	"simplix/internal/domain"
)

const ConsoleName = "CONSOLE"

// Console is the server operator. It holds every permission but is not an
// actor, so actor-only commands reject it.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Name() string { return ConsoleName }

func (c *Console) HasPermission(string) bool { return true }

func (c *Console) SendMessage(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, text)
	return err
}

var _ domain.Issuer = (*Console)(nil)
