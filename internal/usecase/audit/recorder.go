// Package audit persists and logs every command record published on the bus.
package audit

import (
	"context"
	"encoding/json"
	"log"

	"simplix/internal/app/events"
	"simplix/internal/domain"
)

type Logger interface {
	Printf(format string, args ...any)
}

type Subscriber interface {
	Subscribe(topic string) (<-chan any, func())
}

type Recorder struct {
	repo   domain.CommandLogRepository
	logger Logger
}

func NewRecorder(repo domain.CommandLogRepository, logger Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{
		repo:   repo,
		logger: logger,
	}
}

// Run consumes command records until ctx ends or the subscription closes.
// Records already buffered when ctx ends are still written.
func (r *Recorder) Run(ctx context.Context, bus Subscriber) error {
	ch, unsubscribe := bus.Subscribe(events.TopicCommandRecord)
	defer unsubscribe()

	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(context.WithoutCancel(ctx), payload)
		case <-ctx.Done():
			r.drain(context.WithoutCancel(ctx), ch)
			return nil
		}
	}
}

func (r *Recorder) drain(ctx context.Context, ch <-chan any) {
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				return
			}
			r.handle(ctx, payload)
		default:
			return
		}
	}
}

func (r *Recorder) handle(ctx context.Context, payload any) {
	record, ok := payload.(domain.CommandRecord)
	if !ok {
		r.logger.Printf("audit: unexpected payload %T", payload)
		return
	}
	if r.repo != nil {
		if err := r.repo.SaveCommandRecord(ctx, &record); err != nil {
			r.logger.Printf("audit: save %s: %v", record.ID, err)
		}
	}
	r.logPayload(events.NewCommandRecordDTO(record))
}

func (r *Recorder) logPayload(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Printf("[commands] %v", payload)
		return
	}
	r.logger.Printf("[commands] %s", data)
}
