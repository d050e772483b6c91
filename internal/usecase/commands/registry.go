package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
)

type node struct {
	literal  string
	def      *Definition
	children map[string]*node
	// distinct children in registration order, aliases excluded
	order []*node
}

func newNode(literal string) *node {
	return &node{literal: literal, children: make(map[string]*node)}
}

func (n *node) childNames() []string {
	names := lo.Map(n.order, func(c *node, _ int) string { return c.literal })
	sort.Strings(names)
	return names
}

// Registry is a tree of literals. Intermediate literals without their own
// definition act as groups.
type Registry struct {
	mu     sync.RWMutex
	root   *node
	defs   []*Definition
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{root: newNode("")}
}

type Match struct {
	Definition *Definition
	// Path holds the canonical literals that were matched.
	Path     []string
	Consumed int
	// Children is set when Path names a group with no handler of its own.
	Children []string
}

func (m Match) Found() bool { return m.Definition != nil }

func (m Match) IsGroup() bool { return m.Definition == nil && len(m.Children) > 0 }

// Register validates def and adds it. Nothing is changed when an error is
// returned.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	literals := lo.Map(def.Literals(), func(l string, _ int) string { return strings.ToLower(l) })
	leaf := literals[len(literals)-1]
	aliases := lo.Map(def.Aliases, func(a string, _ int) string { return strings.ToLower(strings.TrimSpace(a)) })

	seen := map[string]struct{}{leaf: {}}
	for _, alias := range aliases {
		if alias == "" || strings.ContainsAny(alias, " \t") {
			return fmt.Errorf("%w: %s: invalid alias %q", ErrInvalidDefinition, def.Name, alias)
		}
		if _, dup := seen[alias]; dup {
			return fmt.Errorf("%w: %s: alias %q", ErrDuplicateCommand, def.Name, alias)
		}
		seen[alias] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: %s", ErrRegistryFrozen, def.Name)
	}

	parent := r.root
	for _, lit := range literals[:len(literals)-1] {
		next, ok := parent.children[lit]
		if !ok {
			parent = nil
			break
		}
		if next.literal != lit {
			return fmt.Errorf("%w: %s: %q is an alias of %s", ErrDuplicateCommand, def.Name, lit, next.literal)
		}
		if next.def != nil && len(next.def.Arguments) > 0 {
			return fmt.Errorf("%w: %s: would shadow the arguments of %s", ErrDuplicateCommand, def.Name, next.def.Name)
		}
		parent = next
	}
	if parent != nil {
		if existing, ok := parent.children[leaf]; ok {
			if existing.def != nil || existing.literal != leaf {
				return fmt.Errorf("%w: %s", ErrDuplicateCommand, def.Name)
			}
			if len(existing.order) > 0 && len(def.Arguments) > 0 {
				return fmt.Errorf("%w: %s: arguments would be shadowed by %s", ErrDuplicateCommand, def.Name, strings.Join(existing.childNames(), ", "))
			}
		}
		for _, alias := range aliases {
			if _, ok := parent.children[alias]; ok {
				return fmt.Errorf("%w: %s: alias %q", ErrDuplicateCommand, def.Name, alias)
			}
		}
	}

	stored := def.clone()
	parent = r.root
	for _, lit := range literals[:len(literals)-1] {
		next, ok := parent.children[lit]
		if !ok {
			next = newNode(lit)
			parent.children[lit] = next
			parent.order = append(parent.order, next)
		}
		parent = next
	}
	target, ok := parent.children[leaf]
	if !ok {
		target = newNode(leaf)
		parent.children[leaf] = target
		parent.order = append(parent.order, target)
	}
	target.def = &stored
	for _, alias := range aliases {
		parent.children[alias] = target
	}
	r.defs = append(r.defs, &stored)
	return nil
}

func (r *Registry) DeriveVariant(base Definition, variant string, mutations ...Mutation) error {
	return r.Register(Derive(base, variant, mutations...))
}

func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Resolve walks the literal tree as far as the tokens allow. Matching is
// case-insensitive.
func (r *Registry) Resolve(tokens []string) Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var m Match
	cur := r.root
	for _, tok := range tokens {
		next, ok := cur.children[strings.ToLower(tok)]
		if !ok {
			break
		}
		cur = next
		m.Path = append(m.Path, cur.literal)
		m.Consumed++
	}
	if m.Consumed == 0 {
		return Match{}
	}
	m.Definition = cur.def
	if cur.def == nil {
		m.Children = cur.childNames()
	}
	return m
}

func (r *Registry) lookup(path string) (*Definition, bool) {
	tokens := strings.Fields(path)
	m := r.Resolve(tokens)
	if !m.Found() || m.Consumed != len(tokens) {
		return nil, false
	}
	return m.Definition, true
}

func (r *Registry) Definitions() []*Definition {
	r.mu.RLock()
	out := append([]*Definition(nil), r.defs...)
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Suggest(input string) []string {
	r.mu.RLock()
	keys := lo.Keys(r.root.children)
	r.mu.RUnlock()
	sort.Strings(keys)
	return closestChoices(input, keys, 3)
}
