package handle_message

import (
	"context"
	"testing"

	"simplix/internal/domain"
	"simplix/internal/usecase/commands"
)

type recordingDispatcher struct {
	lines []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, _ domain.Issuer, line string) *commands.Result {
	d.lines = append(d.lines, line)
	return &commands.Result{ID: "r1"}
}

func TestNormalizeLine(t *testing.T) {
	cases := map[string]string{
		"  /rename Sword ":  "rename Sword",
		"broadcast hi":      "broadcast hi",
		"/":                 "",
		"   ":               "",
		"/ debug blockInfo": "debug blockInfo",
	}
	for in, want := range cases {
		if got := NormalizeLine(in); got != want {
			t.Fatalf("NormalizeLine(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHandleSkipsBlankInput(t *testing.T) {
	d := &recordingDispatcher{}
	uc := NewInteractor(d)
	ctx := context.Background()

	if res := uc.Handle(ctx, nil, "  / "); res != nil {
		t.Fatalf("Handle blank = %v, want nil", res)
	}
	if res := uc.Handle(ctx, nil, "/lore --line 1"); res == nil || res.ID != "r1" {
		t.Fatalf("Handle = %v", res)
	}
	if len(d.lines) != 1 || d.lines[0] != "lore --line 1" {
		t.Fatalf("dispatched %v", d.lines)
	}
}
