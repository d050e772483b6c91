package commands

import (
	"context"
	"fmt"
	"strings"
)

type ValueType int

const (
	TypeString ValueType = iota + 1
	TypeInteger
	TypeEnum
	TypeScope
	TypeActor
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeEnum:
		return "enum"
	case TypeScope:
		return "scope"
	case TypeActor:
		return "actor"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ArgumentSpec describes one positional argument or the value of a flag.
type ArgumentSpec struct {
	Name     string
	Type     ValueType
	Required bool
	// Greedy consumes every remaining token, joined by a single space.
	Greedy bool
	// Choices are the candidates of an enum, matched case-insensitively.
	Choices []string
}

// FlagSpec describes a named modifier. A nil Value makes the flag
// presence-only.
type FlagSpec struct {
	Name        string
	Aliases     []string
	Description string
	Value       *ArgumentSpec
	Required    bool
	// Default is used when the flag is absent. A nil Default leaves the
	// flag absent so handlers can tell "not given" apart from a value.
	Default any
	// Permission gates use of the flag on top of the command permission.
	Permission string
}

func (f *FlagSpec) PresenceOnly() bool { return f.Value == nil }

func (f *FlagSpec) matchesAlias(alias string) bool {
	for _, a := range f.Aliases {
		if a == alias {
			return true
		}
	}
	return false
}

// Handler runs on the execution coordinator, never on the dispatching
// goroutine.
type Handler func(ctx context.Context, c *Context) error

// Definition is an immutable command description. Name is the literal path,
// e.g. "broadcast" or "attributes value".
type Definition struct {
	Name         string
	Aliases      []string
	Description  string
	Arguments    []ArgumentSpec
	Flags        []*FlagSpec
	Permission   string
	RequireActor bool
	Handler      Handler
}

func (d Definition) Literals() []string {
	return strings.Fields(d.Name)
}

func (d Definition) Flag(name string) (*FlagSpec, bool) {
	for _, f := range d.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Validate checks the structural invariants: one trailing greedy argument at
// most, required arguments before optional ones, unique flag names and
// aliases.
func (d Definition) Validate() error {
	if len(d.Literals()) == 0 {
		return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	if d.Handler == nil {
		return fmt.Errorf("%w: %s: missing handler", ErrInvalidDefinition, d.Name)
	}

	seenArgs := make(map[string]struct{}, len(d.Arguments))
	optionalSeen := false
	for i, arg := range d.Arguments {
		if err := validateArgument(arg); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidDefinition, d.Name, err)
		}
		if _, dup := seenArgs[arg.Name]; dup {
			return fmt.Errorf("%w: %s: duplicate argument %q", ErrInvalidDefinition, d.Name, arg.Name)
		}
		seenArgs[arg.Name] = struct{}{}
		if arg.Greedy && i != len(d.Arguments)-1 {
			return fmt.Errorf("%w: %s: greedy argument %q must be last", ErrInvalidDefinition, d.Name, arg.Name)
		}
		if arg.Required && optionalSeen {
			return fmt.Errorf("%w: %s: required argument %q follows an optional one", ErrInvalidDefinition, d.Name, arg.Name)
		}
		if !arg.Required {
			optionalSeen = true
		}
	}

	flagNames := make(map[string]struct{}, len(d.Flags))
	flagAliases := make(map[string]struct{})
	for _, f := range d.Flags {
		if f == nil || strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("%w: %s: unnamed flag", ErrInvalidDefinition, d.Name)
		}
		if _, dup := flagNames[f.Name]; dup {
			return fmt.Errorf("%w: %s: duplicate flag %q", ErrInvalidDefinition, d.Name, f.Name)
		}
		flagNames[f.Name] = struct{}{}
		for _, alias := range f.Aliases {
			if _, dup := flagAliases[alias]; dup {
				return fmt.Errorf("%w: %s: duplicate flag alias %q", ErrInvalidDefinition, d.Name, alias)
			}
			flagAliases[alias] = struct{}{}
		}
		if f.Value != nil {
			if err := validateArgument(*f.Value); err != nil {
				return fmt.Errorf("%w: %s: flag %q: %v", ErrInvalidDefinition, d.Name, f.Name, err)
			}
		}
	}
	return nil
}

func validateArgument(arg ArgumentSpec) error {
	if strings.TrimSpace(arg.Name) == "" {
		return fmt.Errorf("unnamed argument")
	}
	if _, ok := valueParsers[arg.Type]; !ok {
		return fmt.Errorf("argument %q has unknown type %s", arg.Name, arg.Type)
	}
	if arg.Type == TypeEnum && len(arg.Choices) == 0 {
		return fmt.Errorf("enum argument %q has no choices", arg.Name)
	}
	if arg.Greedy && arg.Type != TypeString {
		return fmt.Errorf("greedy argument %q must be a string", arg.Name)
	}
	return nil
}

func (d Definition) Usage() string {
	var b strings.Builder
	b.WriteString(d.Name)
	for _, arg := range d.Arguments {
		name := arg.Name
		if arg.Greedy {
			name += "..."
		}
		if arg.Required {
			fmt.Fprintf(&b, " <%s>", name)
		} else {
			fmt.Fprintf(&b, " [%s]", name)
		}
	}
	for _, f := range d.Flags {
		b.WriteString(" ")
		if !f.Required {
			b.WriteString("[")
		}
		b.WriteString("--" + f.Name)
		for _, alias := range f.Aliases {
			b.WriteString("|-" + alias)
		}
		if f.Value != nil {
			fmt.Fprintf(&b, " <%s>", f.Value.Name)
		}
		if !f.Required {
			b.WriteString("]")
		}
	}
	return b.String()
}

func (d Definition) clone() Definition {
	out := d
	out.Aliases = append([]string(nil), d.Aliases...)
	out.Arguments = make([]ArgumentSpec, len(d.Arguments))
	for i, arg := range d.Arguments {
		arg.Choices = append([]string(nil), arg.Choices...)
		out.Arguments[i] = arg
	}
	// Flag specs are shared by pointer and never mutated.
	out.Flags = append([]*FlagSpec(nil), d.Flags...)
	return out
}

type Mutation func(*Definition)

// Derive copies base, names the copy "<base> <variant>" and applies the
// mutations to the copy. base is never modified.
func Derive(base Definition, variant string, mutations ...Mutation) Definition {
	out := base.clone()
	out.Name = strings.TrimSpace(base.Name + " " + variant)
	out.Aliases = nil
	for _, mutate := range mutations {
		if mutate != nil {
			mutate(&out)
		}
	}
	return out
}

func WithFlags(flags ...*FlagSpec) Mutation {
	return func(d *Definition) { d.Flags = append(d.Flags, flags...) }
}

func WithArguments(args ...ArgumentSpec) Mutation {
	return func(d *Definition) { d.Arguments = append(d.Arguments, args...) }
}

func WithHandler(h Handler) Mutation {
	return func(d *Definition) { d.Handler = h }
}

func WithPermission(node string) Mutation {
	return func(d *Definition) { d.Permission = node }
}

func WithDescription(text string) Mutation {
	return func(d *Definition) { d.Description = text }
}

func WithAliases(aliases ...string) Mutation {
	return func(d *Definition) { d.Aliases = append(d.Aliases, aliases...) }
}

func RequireActor() Mutation {
	return func(d *Definition) { d.RequireActor = true }
}
