package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"simplix/internal/domain"
)

type fakeIssuer struct {
	name  string
	perms domain.PermissionSet

	mu       sync.Mutex
	messages []string
}

func newIssuer(name string, perms ...string) *fakeIssuer {
	return &fakeIssuer{name: name, perms: domain.NewPermissionSet(perms...)}
}

func (f *fakeIssuer) Name() string { return f.name }

func (f *fakeIssuer) HasPermission(node string) bool { return f.perms.Has(node) }

func (f *fakeIssuer) SendMessage(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeIssuer) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

func (f *fakeIssuer) Last() string {
	msgs := f.Messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

type fakeActor struct {
	*fakeIssuer
	id    string
	scope string
	block *domain.Block
}

func newActor(name, scope string, perms ...string) *fakeActor {
	return &fakeActor{
		fakeIssuer: newIssuer(name, perms...),
		id:         strings.ToLower(name),
		scope:      scope,
	}
}

func (a *fakeActor) ID() string    { return a.id }
func (a *fakeActor) Scope() string { return a.scope }

func (a *fakeActor) TargetBlock(_ context.Context, maxDistance int) (domain.Block, bool, error) {
	if a.block == nil || maxDistance <= 0 {
		return domain.Block{}, false, nil
	}
	return *a.block, true, nil
}

type fakeWorld struct {
	actors []*fakeActor
	scopes []domain.Scope
}

func newWorld(actors ...*fakeActor) *fakeWorld {
	return &fakeWorld{
		actors: actors,
		scopes: []domain.Scope{
			{Name: "overworld", Biome: "plains"},
			{Name: "nether_scope", Biome: "nether_wastes"},
		},
	}
}

func (w *fakeWorld) FindActor(_ context.Context, name string) (domain.Actor, bool) {
	for _, a := range w.actors {
		if strings.EqualFold(a.Name(), name) {
			return a, true
		}
	}
	return nil, false
}

func (w *fakeWorld) OnlineActors(_ context.Context) []domain.Actor {
	out := make([]domain.Actor, 0, len(w.actors))
	for _, a := range w.actors {
		out = append(out, a)
	}
	return out
}

func (w *fakeWorld) FindScope(_ context.Context, name string) (domain.Scope, bool) {
	for _, s := range w.scopes {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return domain.Scope{}, false
}

func (w *fakeWorld) ActorsIn(_ context.Context, scope domain.Scope) []domain.Actor {
	var out []domain.Actor
	for _, a := range w.actors {
		if a.scope == scope.Name {
			out = append(out, a)
		}
	}
	return out
}

type memItems struct {
	mu    sync.Mutex
	items map[string]domain.Item
	// delay widens the read-modify-write window in race tests.
	delay time.Duration
}

func newMemItems() *memItems {
	return &memItems{items: make(map[string]domain.Item)}
}

func itemKey(actorID string, hand domain.Hand) string { return actorID + "/" + string(hand) }

func (m *memItems) set(actorID string, hand domain.Hand, item domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[itemKey(actorID, hand)] = item.Clone()
}

func (m *memItems) HeldItem(_ context.Context, actorID string, hand domain.Hand) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[itemKey(actorID, hand)].Clone(), nil
}

func (m *memItems) UpdateHeldItem(_ context.Context, actorID string, hand domain.Hand, fn domain.ItemMutation) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := itemKey(actorID, hand)
	next, err := fn(m.items[key].Clone())
	if err != nil {
		return domain.Item{}, err
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.items[key] = next.Clone()
	return next, nil
}

type memAttributes struct {
	mu     sync.Mutex
	values map[string]domain.AttributeInstance
}

func newMemAttributes() *memAttributes {
	return &memAttributes{values: make(map[string]domain.AttributeInstance)}
}

func (m *memAttributes) set(actorID string, inst domain.AttributeInstance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[actorID+"/"+string(inst.Attribute)] = inst
}

func (m *memAttributes) Attribute(_ context.Context, actorID string, attr domain.Attribute) (domain.AttributeInstance, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.values[actorID+"/"+string(attr)]
	return inst, ok, nil
}

func (m *memAttributes) ClearModifiers(_ context.Context, actorID string, attr domain.Attribute) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := actorID + "/" + string(attr)
	inst, ok := m.values[key]
	if !ok {
		return 0, nil
	}
	n := len(inst.Modifiers)
	inst.Modifiers = nil
	m.values[key] = inst
	return n, nil
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type recordingPublisher struct {
	mu      sync.Mutex
	records []domain.CommandRecord
}

func (p *recordingPublisher) PublishCommandRecord(_ context.Context, record domain.CommandRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, record)
}

func (p *recordingPublisher) Records() []domain.CommandRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.CommandRecord(nil), p.records...)
}

type harness struct {
	svc    *Service
	world  *fakeWorld
	items  *memItems
	attrs  *memAttributes
	logger *recordingLogger
	events *recordingPublisher
}

func newHarness(t *testing.T, actors ...*fakeActor) *harness {
	t.Helper()
	h := &harness{
		world:  newWorld(actors...),
		items:  newMemItems(),
		attrs:  newMemAttributes(),
		logger: &recordingLogger{},
		events: &recordingPublisher{},
	}
	svc, err := NewService(Config{
		Workers:    4,
		QueueSize:  64,
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
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	t.Cleanup(svc.Stop)
	h.svc = svc
	return h
}

// run dispatches line and waits for the terminal state.
func (h *harness) run(t *testing.T, issuer domain.Issuer, line string) error {
	t.Helper()
	res := h.svc.Dispatch(context.Background(), issuer, line)
	select {
	case <-res.Done():
		return res.Err()
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatch %q did not finish", line)
		return nil
	}
}

func noop(context.Context, *Context) error { return nil }
