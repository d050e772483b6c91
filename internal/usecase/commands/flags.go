package commands

import (
	"strings"
	"unicode"
)

const flagTerminator = "--"

// isFlagMarker reports whether tok names a flag. Only "-x" and "--x" with a
// letter after the dashes count, so "-5" stays positional.
func isFlagMarker(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	rest := tok[1:]
	if rest[0] == '-' {
		rest = rest[1:]
	}
	if rest == "" {
		return false
	}
	r := []rune(rest)[0]
	return unicode.IsLetter(r)
}

// lookupFlags maps one marker to the flags it names. A single-dash marker
// that matches no alias is read as a group of presence-only aliases.
func lookupFlags(def *Definition, tok string) ([]*FlagSpec, error) {
	if strings.HasPrefix(tok, "--") {
		name := tok[2:]
		for _, f := range def.Flags {
			if strings.EqualFold(f.Name, name) {
				return []*FlagSpec{f}, nil
			}
		}
		return nil, InvalidSyntax("unknown flag %s", tok)
	}

	alias := tok[1:]
	for _, f := range def.Flags {
		if f.matchesAlias(alias) {
			return []*FlagSpec{f}, nil
		}
	}
	if len(alias) < 2 {
		return nil, InvalidSyntax("unknown flag %s", tok)
	}

	group := make([]*FlagSpec, 0, len(alias))
	for _, r := range alias {
		var found *FlagSpec
		for _, f := range def.Flags {
			if f.matchesAlias(string(r)) {
				found = f
				break
			}
		}
		if found == nil {
			return nil, InvalidSyntax("unknown flag -%c in %s", r, tok)
		}
		if !found.PresenceOnly() {
			return nil, InvalidSyntax("flag -%c takes a value and cannot be grouped in %s", r, tok)
		}
		group = append(group, found)
	}
	return group, nil
}

// parse splits tokens into flag values and positional values. Flags may
// appear anywhere; a bare "--" ends flag scanning. A repeated flag keeps its
// last value.
func (p *parser) parse(def *Definition, tokens []string) (args, flags map[string]any, err error) {
	flags = make(map[string]any, len(def.Flags))
	positional := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if tok == flagTerminator {
			positional = append(positional, tokens[i+1:]...)
			break
		}
		if !isFlagMarker(tok) {
			positional = append(positional, tok)
			i++
			continue
		}

		specs, err := lookupFlags(def, tok)
		if err != nil {
			return nil, nil, err
		}
		if len(specs) == 1 && !specs[0].PresenceOnly() {
			spec := specs[0]
			rest := flagValueTokens(tokens[i+1:], spec.Value.Greedy)
			if len(rest) == 0 {
				return nil, nil, InvalidSyntax("flag --%s requires a value <%s>", spec.Name, spec.Value.Name)
			}
			v, n, err := p.parseValue(*spec.Value, rest)
			if err != nil {
				return nil, nil, err
			}
			flags[spec.Name] = v
			i += 1 + n
			continue
		}
		for _, spec := range specs {
			flags[spec.Name] = true
		}
		i++
	}

	for _, f := range def.Flags {
		if _, ok := flags[f.Name]; ok {
			continue
		}
		if f.Required {
			return nil, nil, InvalidSyntax("missing required flag --%s", f.Name)
		}
		if f.Default != nil {
			flags[f.Name] = f.Default
		}
	}

	args, err = p.parsePositional(def, positional)
	if err != nil {
		return nil, nil, err
	}
	return args, flags, nil
}

func flagValueTokens(tokens []string, greedy bool) []string {
	if len(tokens) == 0 || isFlagMarker(tokens[0]) || tokens[0] == flagTerminator {
		return nil
	}
	if !greedy {
		return tokens[:1]
	}
	for i, tok := range tokens {
		if isFlagMarker(tok) || tok == flagTerminator {
			return tokens[:i]
		}
	}
	return tokens
}

func (p *parser) parsePositional(def *Definition, tokens []string) (map[string]any, error) {
	args := make(map[string]any, len(def.Arguments))
	rest := tokens
	for _, spec := range def.Arguments {
		if len(rest) == 0 {
			if spec.Required {
				return nil, InvalidSyntax("missing required argument <%s>", spec.Name)
			}
			continue
		}
		v, n, err := p.parseValue(spec, rest)
		if err != nil {
			return nil, err
		}
		args[spec.Name] = v
		rest = rest[n:]
	}
	if len(rest) > 0 {
		return nil, InvalidSyntax("unexpected argument %q", rest[0])
	}
	return args, nil
}
