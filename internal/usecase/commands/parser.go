package commands

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"

	"simplix/internal/domain"
)

// parseFunc consumes tokens from the front of the remaining input and
// returns the value and how many tokens it used. tokens is never empty.
type parseFunc func(p *parser, spec ArgumentSpec, tokens []string) (any, int, error)

var valueParsers = map[ValueType]parseFunc{
	TypeString:  parseString,
	TypeInteger: parseInteger,
	TypeEnum:    parseEnum,
	TypeScope:   parseScope,
	TypeActor:   parseActor,
}

// parser runs on the dispatching goroutine; directory lookups must be cheap.
type parser struct {
	ctx    context.Context
	actors domain.ActorDirectory
	scopes domain.ScopeDirectory
}

func (p *parser) parseValue(spec ArgumentSpec, tokens []string) (any, int, error) {
	fn, ok := valueParsers[spec.Type]
	if !ok {
		return nil, 0, InvalidSyntax("argument <%s> has an unsupported type", spec.Name)
	}
	return fn(p, spec, tokens)
}

func parseString(_ *parser, spec ArgumentSpec, tokens []string) (any, int, error) {
	if spec.Greedy {
		return strings.Join(tokens, " "), len(tokens), nil
	}
	return tokens[0], 1, nil
}

func parseInteger(_ *parser, spec ArgumentSpec, tokens []string) (any, int, error) {
	n, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, 0, InvalidSyntax("%q is not a valid integer for <%s>", tokens[0], spec.Name)
	}
	return n, 1, nil
}

func parseEnum(_ *parser, spec ArgumentSpec, tokens []string) (any, int, error) {
	raw := tokens[0]
	for _, choice := range spec.Choices {
		if strings.EqualFold(choice, raw) {
			return choice, 1, nil
		}
	}
	if near := closestChoices(raw, spec.Choices, 3); len(near) > 0 {
		return nil, 0, InvalidSyntax("%q is not a valid %s, did you mean %s?", raw, spec.Name, strings.Join(near, ", "))
	}
	return nil, 0, InvalidSyntax("%q is not a valid %s, expected one of %s", raw, spec.Name, strings.Join(spec.Choices, ", "))
}

func parseScope(p *parser, spec ArgumentSpec, tokens []string) (any, int, error) {
	if p.scopes == nil {
		return nil, 0, InvalidSyntax("no scopes are available for <%s>", spec.Name)
	}
	scope, ok := p.scopes.FindScope(p.ctx, tokens[0])
	if !ok {
		return nil, 0, InvalidSyntax("no scope named %q", tokens[0])
	}
	return scope, 1, nil
}

func parseActor(p *parser, spec ArgumentSpec, tokens []string) (any, int, error) {
	if p.actors == nil {
		return nil, 0, InvalidSyntax("no actors are available for <%s>", spec.Name)
	}
	actor, ok := p.actors.FindActor(p.ctx, tokens[0])
	if !ok {
		return nil, 0, InvalidSyntax("no online actor named %q", tokens[0])
	}
	return actor, 1, nil
}

func (a ArgumentSpec) Suggestions(prefix string) []string {
	prefix = strings.ToLower(prefix)
	return lo.Filter(a.Choices, func(choice string, _ int) bool {
		return strings.HasPrefix(strings.ToLower(choice), prefix)
	})
}

func closestChoices(input string, choices []string, limit int) []string {
	ranks := fuzzy.RankFindFold(input, choices)
	sort.Sort(ranks)
	out := lo.Uniq(lo.Map(ranks, func(r fuzzy.Rank, _ int) string { return r.Target }))
	if len(out) == 0 {
		// typos: nothing contains the input in order, fall back to edit distance
		lower := strings.ToLower(input)
		out = lo.Filter(choices, func(c string, _ int) bool {
			return fuzzy.LevenshteinDistance(lower, strings.ToLower(c)) <= max(1, len(c)/3)
		})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
