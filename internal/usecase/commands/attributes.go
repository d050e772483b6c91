package commands

import (
	"context"
	"strconv"

	"github.com/samber/lo"

	"simplix/internal/domain"
)

var attributeFlag = &FlagSpec{
	Name:        "attribute",
	Aliases:     []string{"a"},
	Description: "The attribute to inspect.",
	Required:    true,
	Value: &ArgumentSpec{
		Name:     "attribute",
		Type:     TypeEnum,
		Required: true,
		Choices: lo.Map(domain.Attributes(), func(a domain.Attribute, _ int) string {
			return string(a)
		}),
	},
}

// registerAttributes derives the attributes children from one shared base so
// they declare their flags once.
func (b *builtins) registerAttributes(r *Registry) error {
	base := Definition{
		Name:        "attributes",
		Description: "Inspects the attributes of a player.",
		Flags:       []*FlagSpec{attributeFlag, TargetFlag},
	}
	variants := []struct {
		name        string
		description string
		handler     Handler
	}{
		{"value", "Shows the current value of an attribute.", b.attributeValue},
		{"modifiers", "Lists the modifiers applied to an attribute.", b.attributeModifiers},
		{"clearModifiers", "Removes every modifier from an attribute.", b.clearAttributeModifiers},
	}
	for _, v := range variants {
		if err := r.DeriveVariant(base, v.name, WithDescription(v.description), WithHandler(v.handler)); err != nil {
			return err
		}
	}
	return nil
}

func (b *builtins) lookupAttribute(ctx context.Context, c *Context) (domain.Actor, domain.AttributeInstance, error) {
	target, err := ResolveTarget(c)
	if err != nil {
		return nil, domain.AttributeInstance{}, err
	}
	raw, _ := FlagValue[string](c, attributeFlag.Name)
	attr := domain.Attribute(raw)
	inst, ok, err := b.attributes.Attribute(ctx, target.ID(), attr)
	if err != nil {
		return nil, domain.AttributeInstance{}, err
	}
	if !ok {
		return nil, domain.AttributeInstance{}, Fail("%s has no %s attribute.", target.Name(), attr)
	}
	return target, inst, nil
}

func (b *builtins) attributeValue(ctx context.Context, c *Context) error {
	_, inst, err := b.lookupAttribute(ctx, c)
	if err != nil {
		return err
	}
	return c.Reply(ctx, "Value: %s", strconv.FormatFloat(inst.Value(), 'f', -1, 64))
}

func (b *builtins) attributeModifiers(ctx context.Context, c *Context) error {
	_, inst, err := b.lookupAttribute(ctx, c)
	if err != nil {
		return err
	}
	if err := c.Reply(ctx, "Modifiers:"); err != nil {
		return err
	}
	for _, mod := range inst.Modifiers {
		if err := c.Reply(ctx, "| %s", mod); err != nil {
			return err
		}
	}
	return nil
}

func (b *builtins) clearAttributeModifiers(ctx context.Context, c *Context) error {
	target, inst, err := b.lookupAttribute(ctx, c)
	if err != nil {
		return err
	}
	if _, err := b.attributes.ClearModifiers(ctx, target.ID(), inst.Attribute); err != nil {
		return err
	}
	return c.Reply(ctx, "Cleared modifiers for %s", inst.Attribute)
}
