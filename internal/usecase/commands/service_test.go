package commands

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"simplix/internal/domain"
)

func TestRenameWithoutPermissionNeverMutates(t *testing.T) {
	alex := newActor("Alex", "overworld")
	h := newHarness(t, alex)
	h.items.set(alex.ID(), domain.HandMain, domain.Item{Type: "diamond_sword"})

	err := h.run(t, alex, "rename Excalibur")
	if KindOf(err) != KindNoPermission {
		t.Fatalf("rename error = %v, want no_permission", err)
	}
	item, _ := h.items.HeldItem(context.Background(), alex.ID(), domain.HandMain)
	if item.DisplayName != "" {
		t.Fatalf("display name = %q, want unchanged", item.DisplayName)
	}
	if msgs := alex.Messages(); len(msgs) != 1 || !strings.Contains(msgs[0], "You do not have permission to execute this command: simplix.rename") {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestRename(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionRename)
	h := newHarness(t, alex)
	h.items.set(alex.ID(), domain.HandMain, domain.Item{Type: "diamond_sword"})

	if err := h.run(t, alex, "rename The  Sword"); err != nil {
		t.Fatalf("rename error = %v", err)
	}
	item, _ := h.items.HeldItem(context.Background(), alex.ID(), domain.HandMain)
	if item.DisplayName != "The Sword" {
		t.Fatalf("display name = %q, want %q", item.DisplayName, "The Sword")
	}
	if got := alex.Last(); got != "You have renamed diamond_sword to The Sword." {
		t.Fatalf("reply = %q", got)
	}
}

func TestRenameOtherPlayerNeedsTargetPermission(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionRename)
	bob := newActor("Bob", "overworld")
	h := newHarness(t, alex, bob)
	h.items.set(bob.ID(), domain.HandMain, domain.Item{Type: "stick"})

	err := h.run(t, alex, "rename Wand -p Bob")
	if KindOf(err) != KindNoPermission {
		t.Fatalf("error = %v, want no_permission", err)
	}
	if !strings.Contains(alex.Last(), PermissionTargetOthers) {
		t.Fatalf("reply = %q", alex.Last())
	}
	item, _ := h.items.HeldItem(context.Background(), bob.ID(), domain.HandMain)
	if item.DisplayName != "" {
		t.Fatalf("bob's item was renamed to %q", item.DisplayName)
	}
}

func TestRenameEmptyHand(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionRename)
	h := newHarness(t, alex)

	err := h.run(t, alex, "rename Nothing")
	if KindOf(err) != KindExecution {
		t.Fatalf("error = %v, want execution_error", err)
	}
	if !strings.HasSuffix(alex.Last(), "You must be holding an item.") {
		t.Fatalf("reply = %q", alex.Last())
	}
}

func TestEditLoreRemoveOutOfBoundsLeavesItemUnchanged(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionLore)
	h := newHarness(t, alex)
	lore := []string{"first", "second"}
	h.items.set(alex.ID(), domain.HandMain, domain.Item{Type: "book", Lore: lore})

	err := h.run(t, alex, "editLore --remove --line 2")
	if err == nil {
		t.Fatal("expected an out of bounds failure")
	}
	if !strings.Contains(alex.Last(), "Selected item doesn't have lore line 2.") {
		t.Fatalf("reply = %q", alex.Last())
	}
	item, _ := h.items.HeldItem(context.Background(), alex.ID(), domain.HandMain)
	if !reflect.DeepEqual(item.Lore, lore) {
		t.Fatalf("lore = %v, want %v", item.Lore, lore)
	}
}

func TestEditLoreAddThenRemoveRoundTrip(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionLore)
	h := newHarness(t, alex)
	original := []string{"alpha", "", "gamma"}
	h.items.set(alex.ID(), domain.HandMain, domain.Item{Type: "book", Lore: original})

	if err := h.run(t, alex, "editLore foo"); err != nil {
		t.Fatalf("add error = %v", err)
	}
	item, _ := h.items.HeldItem(context.Background(), alex.ID(), domain.HandMain)
	if len(item.Lore) != 4 || item.Lore[3] != "foo" {
		t.Fatalf("lore after add = %v", item.Lore)
	}

	if err := h.run(t, alex, fmt.Sprintf("editLore --remove --line %d", len(item.Lore)-1)); err != nil {
		t.Fatalf("remove error = %v", err)
	}
	item, _ = h.items.HeldItem(context.Background(), alex.ID(), domain.HandMain)
	if !reflect.DeepEqual(item.Lore, original) {
		t.Fatalf("lore = %q, want %q", item.Lore, original)
	}
}

func TestEditLoreOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantLore []string
		wantMsg  string
		wantErr  bool
	}{
		{name: "replace", line: "editLore -l 0 new", wantLore: []string{"new", "b"}, wantMsg: "Replaced line [a] with [new] in book."},
		{name: "replace out of bounds", line: "editLore -l 5 new", wantLore: []string{"a", "b"}, wantMsg: "doesn't have lore line 5.", wantErr: true},
		{name: "negative line", line: "editLore -l -1 new", wantLore: []string{"a", "b"}, wantMsg: "doesn't have lore line -1.", wantErr: true},
		{name: "remove without line", line: "editLore -r", wantLore: []string{"a", "b"}, wantMsg: "You must provide a line number to remove.", wantErr: true},
		{name: "add without text", line: "editLore", wantLore: []string{"a", "b"}, wantMsg: "You must provide lore to add.", wantErr: true},
		{name: "remove first", line: "editLore -r -l 0", wantLore: []string{"b"}, wantMsg: "Removed line [a] from book."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alex := newActor("Alex", "overworld", PermissionLore)
			h := newHarness(t, alex)
			h.items.set(alex.ID(), domain.HandMain, domain.Item{Type: "book", Lore: []string{"a", "b"}})

			err := h.run(t, alex, tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.HasSuffix(alex.Last(), tt.wantMsg) {
				t.Fatalf("reply = %q, want suffix %q", alex.Last(), tt.wantMsg)
			}
			item, _ := h.items.HeldItem(context.Background(), alex.ID(), domain.HandMain)
			if !reflect.DeepEqual(item.Lore, tt.wantLore) {
				t.Fatalf("lore = %q, want %q", item.Lore, tt.wantLore)
			}
		})
	}
}

func TestEditLoreOffhand(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionLore)
	h := newHarness(t, alex)
	h.items.set(alex.ID(), domain.HandMain, domain.Item{Type: "sword"})
	h.items.set(alex.ID(), domain.HandOff, domain.Item{Type: "shield"})

	if err := h.run(t, alex, "editLore -o sturdy"); err != nil {
		t.Fatalf("error = %v", err)
	}
	off, _ := h.items.HeldItem(context.Background(), alex.ID(), domain.HandOff)
	main, _ := h.items.HeldItem(context.Background(), alex.ID(), domain.HandMain)
	if len(off.Lore) != 1 || len(main.Lore) != 0 {
		t.Fatalf("off = %v, main = %v", off.Lore, main.Lore)
	}
}

func TestConcurrentLoreEditsAreNotLost(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionLore, PermissionTargetOthers)
	bob := newActor("Bob", "overworld", PermissionLore, PermissionTargetOthers)
	h := newHarness(t, alex, bob)
	h.items.delay = time.Millisecond
	h.items.set(bob.ID(), domain.HandMain, domain.Item{Type: "book"})

	const edits = 20
	var wg sync.WaitGroup
	for i := 0; i < edits; i++ {
		issuer := alex
		if i%2 == 0 {
			issuer = bob
		}
		wg.Add(1)
		go func(i int, issuer *fakeActor) {
			defer wg.Done()
			if err := h.run(t, issuer, fmt.Sprintf("editLore -p Bob line-%d", i)); err != nil {
				t.Errorf("edit %d error = %v", i, err)
			}
		}(i, issuer)
	}
	wg.Wait()

	item, _ := h.items.HeldItem(context.Background(), bob.ID(), domain.HandMain)
	if len(item.Lore) != edits {
		t.Fatalf("lore has %d lines, want %d: %v", len(item.Lore), edits, item.Lore)
	}
}

func TestBroadcastRecipients(t *testing.T) {
	admin := newActor("Admin", "overworld", PermissionBroadcast)
	steve := newActor("Steve", "overworld")
	nina := newActor("Nina", "nether_scope", "some.perm")
	nate := newActor("Nate", "nether_scope")

	tests := []struct {
		name string
		line string
		want []*fakeActor
		skip []*fakeActor
	}{
		{name: "everyone", line: "broadcast hello all", want: []*fakeActor{admin, steve, nina, nate}},
		{name: "alias and scope", line: "bc -w nether_scope hello all", want: []*fakeActor{nina, nate}, skip: []*fakeActor{admin, steve}},
		{name: "scope and permission", line: "announce -w nether_scope -p some.perm hello all", want: []*fakeActor{nina}, skip: []*fakeActor{admin, steve, nate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, a := range []*fakeActor{admin, steve, nina, nate} {
				a.mu.Lock()
				a.messages = nil
				a.mu.Unlock()
			}
			h := newHarness(t, admin, steve, nina, nate)
			if err := h.run(t, admin, tt.line); err != nil {
				t.Fatalf("broadcast error = %v", err)
			}
			for _, a := range tt.want {
				if a.Last() != "hello all" {
					t.Fatalf("%s got %v", a.Name(), a.Messages())
				}
			}
			for _, a := range tt.skip {
				if len(a.Messages()) != 0 {
					t.Fatalf("%s should not receive the broadcast, got %v", a.Name(), a.Messages())
				}
			}
		})
	}
}

func TestBroadcastWithoutMessage(t *testing.T) {
	admin := newActor("Admin", "overworld", PermissionBroadcast)
	h := newHarness(t, admin)
	if err := h.run(t, admin, "broadcast -w overworld"); err == nil {
		t.Fatal("expected failure")
	}
	if !strings.HasSuffix(admin.Last(), "You must provide a message to broadcast.") {
		t.Fatalf("reply = %q", admin.Last())
	}
}

func TestAttributeValueTargets(t *testing.T) {
	bob := newActor("Bob", "overworld")
	console := newIssuer("CONSOLE", "*")
	h := newHarness(t, bob)
	h.attrs.set(bob.ID(), domain.AttributeInstance{Attribute: domain.AttributeSpeed, Base: 0.1})

	err := h.run(t, console, "attributes value -a SPEED")
	if KindOf(err) != KindInvalidSender {
		t.Fatalf("console without target error = %v, want invalid_sender", err)
	}

	if err := h.run(t, console, "attributes value -a SPEED -p Bob"); err != nil {
		t.Fatalf("with target error = %v", err)
	}
	if got := console.Last(); got != "Value: 0.1" {
		t.Fatalf("reply = %q", got)
	}

	err = h.run(t, console, "attributes value -a SPEED -p Ghost")
	if KindOf(err) != KindInvalidSyntax {
		t.Fatalf("unknown target error = %v, want invalid_syntax", err)
	}
}

func TestAttributeModifiersAndClear(t *testing.T) {
	bob := newActor("Bob", "overworld")
	h := newHarness(t, bob)
	h.attrs.set(bob.ID(), domain.AttributeInstance{
		Attribute: domain.AttributeArmor,
		Base:      2,
		Modifiers: []domain.AttributeModifier{{ID: "m1", Name: "helmet", Amount: 3, Operation: domain.OperationAddNumber}},
	})

	if err := h.run(t, bob, "attributes modifiers --attribute armor"); err != nil {
		t.Fatalf("modifiers error = %v", err)
	}
	msgs := bob.Messages()
	if len(msgs) != 2 || msgs[0] != "Modifiers:" || !strings.HasPrefix(msgs[1], "| ") || !strings.Contains(msgs[1], "helmet") {
		t.Fatalf("messages = %v", msgs)
	}

	if err := h.run(t, bob, "attributes clearModifiers -a ARMOR"); err != nil {
		t.Fatalf("clear error = %v", err)
	}
	if got := bob.Last(); got != "Cleared modifiers for ARMOR" {
		t.Fatalf("reply = %q", got)
	}
	inst, _, _ := h.attrs.Attribute(context.Background(), bob.ID(), domain.AttributeArmor)
	if len(inst.Modifiers) != 0 {
		t.Fatalf("modifiers = %v", inst.Modifiers)
	}

	if err := h.run(t, bob, "attributes value -a luck"); KindOf(err) != KindExecution {
		t.Fatalf("missing attribute error = %v", err)
	}
	if !strings.HasSuffix(bob.Last(), "Bob has no LUCK attribute.") {
		t.Fatalf("reply = %q", bob.Last())
	}
}

func TestBlockInfo(t *testing.T) {
	alex := newActor("Alex", "overworld")
	alex.block = &domain.Block{
		Type: "stone", Data: "stone", State: "normal", Biome: "plains", Liquid: "none",
		Location: domain.Location{Scope: "overworld", X: 1, Y: 64, Z: 3},
	}
	steve := newActor("Steve", "overworld")
	console := newIssuer("CONSOLE", "*")
	h := newHarness(t, alex, steve)

	if err := h.run(t, alex, "debug blockInfo"); err != nil {
		t.Fatalf("error = %v", err)
	}
	msgs := alex.Messages()
	if len(msgs) != 7 || msgs[1] != "Block Type: stone" || msgs[6] != "Block liquidType: none" {
		t.Fatalf("messages = %v", msgs)
	}

	if err := h.run(t, steve, "debug blockinfo"); err != nil {
		t.Fatalf("error = %v", err)
	}
	if steve.Last() != "No block in range" {
		t.Fatalf("reply = %q", steve.Last())
	}

	err := h.run(t, console, "debug blockInfo")
	if KindOf(err) != KindInvalidSender {
		t.Fatalf("console error = %v, want invalid_sender", err)
	}
}

func TestUnknownCommandsAndGroups(t *testing.T) {
	console := newIssuer("CONSOLE", "*")
	h := newHarness(t)

	err := h.run(t, console, "brodcast hi")
	if KindOf(err) != KindInvalidSyntax {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(console.Last(), "did you mean broadcast") {
		t.Fatalf("reply = %q", console.Last())
	}

	err = h.run(t, console, "attributes")
	if KindOf(err) != KindInvalidSyntax {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(console.Last(), "clearModifiers, modifiers, value") {
		t.Fatalf("reply = %q", console.Last())
	}

	if err := h.run(t, console, "   "); KindOf(err) != KindInvalidSyntax {
		t.Fatalf("empty line error = %v", err)
	}
}

func TestSyntaxErrorIncludesUsage(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionRename)
	h := newHarness(t, alex)

	if err := h.run(t, alex, "rename"); KindOf(err) != KindInvalidSyntax {
		t.Fatalf("error = %v", err)
	}
	msgs := alex.Messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "Usage: /rename <name...>") {
		t.Fatalf("messages = %v", msgs)
	}
}

func TestHandlerFailuresAreHidden(t *testing.T) {
	h := &harness{
		world:  newWorld(),
		items:  newMemItems(),
		attrs:  newMemAttributes(),
		logger: &recordingLogger{},
		events: &recordingPublisher{},
	}
	svc, err := NewService(Config{
		Logger:     h.logger,
		Actors:     h.world,
		Scopes:     h.world,
		Items:      h.items,
		Attributes: h.attrs,
		Events:     h.events,
	})
	if err != nil {
		t.Fatalf("NewService error = %v", err)
	}
	if err := svc.Register(Definition{Name: "explode", Handler: func(context.Context, *Context) error {
		return errors.New("database password is hunter2")
	}}); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if err := svc.Register(Definition{Name: "panic", Handler: func(context.Context, *Context) error {
		panic("boom")
	}}); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	t.Cleanup(svc.Stop)
	h.svc = svc

	console := newIssuer("CONSOLE", "*")
	for _, line := range []string{"explode", "panic"} {
		err := h.run(t, console, line)
		if KindOf(err) != KindExecution {
			t.Fatalf("%s error = %v", line, err)
		}
		reply := console.Last()
		if strings.Contains(reply, "hunter2") || strings.Contains(reply, "boom") {
			t.Fatalf("reply leaks internals: %q", reply)
		}
		if !strings.Contains(reply, "An error occurred while executing this command (incident ") {
			t.Fatalf("reply = %q", reply)
		}
	}

	logged := strings.Join(h.logger.Lines(), "\n")
	if !strings.Contains(logged, "hunter2") || !strings.Contains(logged, "panic in panic: boom") {
		t.Fatalf("log = %s", logged)
	}
	if len(console.Messages()) != 2 {
		t.Fatalf("messages = %v, want exactly one per failure", console.Messages())
	}
}

func TestCommandRecordsArePublished(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionRename)
	h := newHarness(t, alex)
	h.items.set(alex.ID(), domain.HandMain, domain.Item{Type: "stick"})

	_ = h.run(t, alex, "rename Wand")
	_ = h.run(t, alex, "editLore hi")

	records := h.events.Records()
	if len(records) != 2 {
		t.Fatalf("records = %v", records)
	}
	if records[0].Outcome != domain.OutcomeDone || records[0].Command != "rename" || records[0].Issuer != "Alex" {
		t.Fatalf("first record = %+v", records[0])
	}
	if records[1].Outcome != domain.OutcomeNoPermission || records[1].Detail != PermissionLore {
		t.Fatalf("second record = %+v", records[1])
	}
}

func TestDispatchAfterStop(t *testing.T) {
	alex := newActor("Alex", "overworld", PermissionRename)
	h := newHarness(t, alex)
	h.svc.Stop()

	err := h.run(t, alex, "rename x")
	if KindOf(err) != KindExecution {
		t.Fatalf("error = %v", err)
	}
	if !strings.HasSuffix(alex.Last(), "Commands are not available right now.") {
		t.Fatalf("reply = %q", alex.Last())
	}
}
