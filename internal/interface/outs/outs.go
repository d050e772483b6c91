package outs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrNoSession = errors.New("outs: no session for actor")

// Sender is one connected session able to show text to its actor.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Router routes outgoing text to the session of each online actor.
type Router struct {
	mu      sync.RWMutex
	senders map[string]Sender
}

func NewRouter() *Router {
	return &Router{
		senders: make(map[string]Sender),
	}
}

// Register binds an actor to its session, replacing any previous one.
func (r *Router) Register(actorID string, sender Sender) {
	if r == nil || sender == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[strings.ToLower(actorID)] = sender
}

// Unregister drops the session only if it is still the one bound to actorID.
func (r *Router) Unregister(actorID string, sender Sender) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := strings.ToLower(actorID)
	if current, ok := r.senders[id]; ok && current == sender {
		delete(r.senders, id)
	}
}

func (r *Router) SendTo(ctx context.Context, actorID, text string) error {
	if r == nil {
		return fmt.Errorf("outs: no router configured")
	}
	r.mu.RLock()
	sender, ok := r.senders[strings.ToLower(actorID)]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSession, actorID)
	}
	return sender.Send(ctx, text)
}

func (r *Router) Sessions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.senders)
}
