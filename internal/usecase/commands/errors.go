package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateCommand is returned when a name or alias is already taken.
	ErrDuplicateCommand = errors.New("command already registered")
	// ErrRegistryFrozen is returned by Register once the service has started.
	ErrRegistryFrozen = errors.New("command registry is frozen")
	// ErrInvalidDefinition wraps every definition validation failure.
	ErrInvalidDefinition = errors.New("invalid command definition")
	// ErrCoordinatorStopped is returned by Submit after Stop.
	ErrCoordinatorStopped = errors.New("execution coordinator stopped")
	// ErrCoordinatorBusy is returned by Submit when the queue is full.
	ErrCoordinatorBusy = errors.New("execution coordinator busy")
)

// Kind is the closed set of failures reported back to an issuer.
type Kind int

const (
	KindInvalidSyntax Kind = iota + 1
	KindNoPermission
	KindInvalidSender
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSyntax:
		return "invalid_syntax"
	case KindNoPermission:
		return "no_permission"
	case KindInvalidSender:
		return "invalid_sender"
	case KindExecution:
		return "execution_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failure with a user-facing message. Err, when set on an
// execution failure, is internal detail that is logged and never shown.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func InvalidSyntax(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidSyntax, Message: fmt.Sprintf(format, args...)}
}

func NoPermission(node string) *Error {
	return &Error{Kind: KindNoPermission, Message: node}
}

func InvalidSender(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidSender, Message: fmt.Sprintf(format, args...)}
}

func ExecutionFailure(err error) *Error {
	return &Error{Kind: KindExecution, Message: "command execution failed", Err: err}
}

// KindOf classifies any error; errors outside the closed set are execution
// failures.
func KindOf(err error) Kind {
	var cmdErr *Error
	if errors.As(err, &cmdErr) {
		return cmdErr.Kind
	}
	return KindExecution
}

// Fail is an expected handler failure whose message is shown to the issuer
// as is.
func Fail(format string, args ...any) *Error {
	return &Error{Kind: KindExecution, Message: fmt.Sprintf(format, args...)}
}
