package events

import (
	"context"
	"log"
	"sync"

	"simplix/internal/domain"
)

const (
	TopicCommandRecord = "commands:record"

	defaultBufferSize = 128
)

type Bus struct {
	mu        sync.RWMutex
	subs      map[string]map[int]chan any
	nextSubID int
	closed    bool

	dropMu     sync.Mutex
	dropCounts map[string]uint64
}

func NewBus() *Bus {
	return &Bus{
		subs:       make(map[string]map[int]chan any),
		dropCounts: make(map[string]uint64),
	}
}

// Publish never blocks: a subscriber with a full buffer misses the payload.
func (b *Bus) Publish(topic string, payload any) {
	if topic == "" {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- payload:
		default:
			b.recordDrop(topic)
		}
	}
}

func (b *Bus) Subscribe(topic string) (<-chan any, func()) {
	ch := make(chan any, defaultBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if b.subs == nil {
		b.subs = make(map[string]map[int]chan any)
	}
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan any)
	}
	id := b.nextSubID
	b.nextSubID++
	b.subs[topic][id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs, ok := b.subs[topic]
			if !ok {
				return
			}
			if _, ok := subs[id]; !ok {
				return
			}
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.subs, topic)
			}
			close(ch)
		})
	}

	return ch, unsubscribe
}

// Close ends every subscription; later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subs, topic)
	}
}

func (b *Bus) Drops(topic string) uint64 {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	return b.dropCounts[topic]
}

func (b *Bus) recordDrop(topic string) {
	b.dropMu.Lock()
	defer b.dropMu.Unlock()
	if b.dropCounts == nil {
		b.dropCounts = make(map[string]uint64)
	}
	b.dropCounts[topic]++
	if b.dropCounts[topic]%100 == 1 {
		log.Printf("events: dropping messages for %s (total drops: %d)", topic, b.dropCounts[topic])
	}
}

// CommandPublisher puts command records on the bus.
type CommandPublisher struct {
	bus *Bus
}

func NewCommandPublisher(bus *Bus) *CommandPublisher {
	return &CommandPublisher{bus: bus}
}

func (p *CommandPublisher) PublishCommandRecord(_ context.Context, record domain.CommandRecord) {
	if p == nil || p.bus == nil {
		return
	}
	p.bus.Publish(TopicCommandRecord, record)
}

var _ domain.CommandRecordPublisher = (*CommandPublisher)(nil)
