package commands

import (
	"context"
	"fmt"

	"simplix/internal/domain"
)

// Context is created for one invocation and owned by the handler that
// processes it. It is never reused.
type Context struct {
	ID      string
	Issuer  domain.Issuer
	Command *Definition
	Line    string

	args      map[string]any
	flags     map[string]any
	formatter domain.TextFormatter
}

func (c *Context) Arg(name string) (any, bool) {
	v, ok := c.args[name]
	return v, ok
}

func (c *Context) Flag(name string) (any, bool) {
	v, ok := c.flags[name]
	return v, ok
}

func (c *Context) HasFlag(name string) bool {
	_, ok := c.flags[name]
	return ok
}

func (c *Context) Render(markup string) string {
	if c.formatter == nil {
		return markup
	}
	return c.formatter.Render(markup)
}

// Reply sends plain text to the issuer. User markup must go through Render
// first.
func (c *Context) Reply(ctx context.Context, format string, args ...any) error {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	return c.Issuer.SendMessage(ctx, text)
}

func ArgValue[T any](c *Context, name string) (T, bool) {
	return typed[T](c.args, name)
}

func FlagValue[T any](c *Context, name string) (T, bool) {
	return typed[T](c.flags, name)
}

func typed[T any](values map[string]any, name string) (T, bool) {
	var zero T
	raw, ok := values[name]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}
