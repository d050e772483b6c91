package domain

import (
	"context"
	"fmt"
	"strings"
)

type Attribute string

const (
	AttributeMaxHealth           Attribute = "MAX_HEALTH"
	AttributeFollowRange         Attribute = "FOLLOW_RANGE"
	AttributeKnockbackResistance Attribute = "KNOCKBACK_RESISTANCE"
	AttributeSpeed               Attribute = "SPEED"
	AttributeFlyingSpeed         Attribute = "FLYING_SPEED"
	AttributeAttackDamage        Attribute = "ATTACK_DAMAGE"
	AttributeAttackKnockback     Attribute = "ATTACK_KNOCKBACK"
	AttributeAttackSpeed         Attribute = "ATTACK_SPEED"
	AttributeArmor               Attribute = "ARMOR"
	AttributeArmorToughness      Attribute = "ARMOR_TOUGHNESS"
	AttributeLuck                Attribute = "LUCK"
)

var allAttributes = []Attribute{
	AttributeMaxHealth,
	AttributeFollowRange,
	AttributeKnockbackResistance,
	AttributeSpeed,
	AttributeFlyingSpeed,
	AttributeAttackDamage,
	AttributeAttackKnockback,
	AttributeAttackSpeed,
	AttributeArmor,
	AttributeArmorToughness,
	AttributeLuck,
}

// Attributes returns every attribute in declaration order.
func Attributes() []Attribute {
	return append([]Attribute(nil), allAttributes...)
}

func ParseAttribute(raw string) (Attribute, bool) {
	raw = strings.TrimSpace(raw)
	for _, attr := range allAttributes {
		if strings.EqualFold(string(attr), raw) {
			return attr, true
		}
	}
	return "", false
}

type ModifierOperation string

const (
	OperationAddNumber       ModifierOperation = "ADD_NUMBER"
	OperationAddScalar       ModifierOperation = "ADD_SCALAR"
	OperationMultiplyScalar1 ModifierOperation = "MULTIPLY_SCALAR_1"
)

type AttributeModifier struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	Amount    float64           `json:"amount" yaml:"amount"`
	Operation ModifierOperation `json:"operation" yaml:"operation"`
}

func (m AttributeModifier) String() string {
	return fmt.Sprintf("AttributeModifier{uuid=%s, name=%s, operation=%s, amount=%g}", m.ID, m.Name, m.Operation, m.Amount)
}

type AttributeInstance struct {
	Attribute Attribute
	Base      float64
	Modifiers []AttributeModifier
}

// Value applies the modifiers to the base value: flat additions first, then
// scalar additions on the added value, then each multiplier in turn.
func (a AttributeInstance) Value() float64 {
	added := a.Base
	for _, m := range a.Modifiers {
		if m.Operation == OperationAddNumber {
			added += m.Amount
		}
	}
	value := added
	for _, m := range a.Modifiers {
		if m.Operation == OperationAddScalar {
			value += added * m.Amount
		}
	}
	for _, m := range a.Modifiers {
		if m.Operation == OperationMultiplyScalar1 {
			value *= 1 + m.Amount
		}
	}
	return value
}

type AttributeStore interface {
	Attribute(ctx context.Context, actorID string, attr Attribute) (AttributeInstance, bool, error)
	// ClearModifiers removes every modifier and reports how many were removed.
	ClearModifiers(ctx context.Context, actorID string, attr Attribute) (int, error)
}
