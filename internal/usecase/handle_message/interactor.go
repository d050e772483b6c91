// Package handle_message turns text typed by an issuer into a dispatched command line.
package handle_message

import (
	"context"
	"strings"

	"simplix/internal/domain"
	"simplix/internal/usecase/commands"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, issuer domain.Issuer, line string) *commands.Result
}

type Interactor struct {
	dispatcher Dispatcher
}

func NewInteractor(dispatcher Dispatcher) *Interactor {
	return &Interactor{
		dispatcher: dispatcher,
	}
}

// Handle accepts chat-style input: surrounding blanks and a leading slash are
// dropped. Blank input is ignored and returns nil.
func (uc *Interactor) Handle(ctx context.Context, issuer domain.Issuer, text string) *commands.Result {
	line := NormalizeLine(text)
	if line == "" {
		return nil
	}
	return uc.dispatcher.Dispatch(ctx, issuer, line)
}

func NormalizeLine(text string) string {
	line := strings.TrimSpace(text)
	line = strings.TrimPrefix(line, "/")
	return strings.TrimSpace(line)
}
