package domain

import (
	"math"
	"testing"
)

func TestPermissionSetHas(t *testing.T) {
	tests := []struct {
		name    string
		granted []string
		node    string
		want    bool
	}{
		{name: "exact", granted: []string{"simplix.rename"}, node: "simplix.rename", want: true},
		{name: "case insensitive", granted: []string{"Simplix.Rename"}, node: "simplix.RENAME", want: true},
		{name: "missing", granted: []string{"simplix.rename"}, node: "simplix.lore", want: false},
		{name: "wildcard", granted: []string{"*"}, node: "simplix.lore", want: true},
		{name: "subtree", granted: []string{"simplix.*"}, node: "simplix.target.others", want: true},
		{name: "nested subtree", granted: []string{"simplix.target.*"}, node: "simplix.target.others", want: true},
		{name: "subtree does not match sibling", granted: []string{"simplix.target.*"}, node: "simplix.lore", want: false},
		{name: "empty node is public", granted: nil, node: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPermissionSet(tt.granted...).Has(tt.node)
			if got != tt.want {
				t.Fatalf("Has(%q) = %v, want %v", tt.node, got, tt.want)
			}
		})
	}
}

func TestAttributeInstanceValue(t *testing.T) {
	inst := AttributeInstance{
		Attribute: AttributeSpeed,
		Base:      0.1,
		Modifiers: []AttributeModifier{
			{ID: "a", Amount: 0.1, Operation: OperationAddNumber},
			{ID: "b", Amount: 0.5, Operation: OperationAddScalar},
			{ID: "c", Amount: 1, Operation: OperationMultiplyScalar1},
		},
	}
	// (0.1 + 0.1) = 0.2; + 0.2*0.5 = 0.3; * 2 = 0.6
	if got := inst.Value(); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("Value() = %v, want 0.6", got)
	}

	bare := AttributeInstance{Attribute: AttributeArmor, Base: 4}
	if got := bare.Value(); got != 4 {
		t.Fatalf("Value() without modifiers = %v, want 4", got)
	}
}

func TestParseAttribute(t *testing.T) {
	if attr, ok := ParseAttribute("speed"); !ok || attr != AttributeSpeed {
		t.Fatalf("ParseAttribute(speed) = %q, %v", attr, ok)
	}
	if _, ok := ParseAttribute("jump"); ok {
		t.Fatal("expected unknown attribute to fail")
	}
}

func TestItemHelpers(t *testing.T) {
	if !(Item{}).IsEmpty() || !(Item{Type: "AIR"}).IsEmpty() {
		t.Fatal("expected empty and air items to be empty")
	}
	item := Item{Type: "diamond_sword", Lore: []string{"a"}}
	clone := item.Clone()
	clone.Lore[0] = "b"
	if item.Lore[0] != "a" {
		t.Fatal("Clone shares the lore slice")
	}
	if item.Label() != "diamond_sword" {
		t.Fatalf("Label() = %q", item.Label())
	}
}
