package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"simplix/internal/domain"
)

const errorTemplate = "<dark_red>Error <white>» <red>"

type FailureHandler func(e *Error, def *Definition) string

var failureHandlers = map[Kind]FailureHandler{
	KindInvalidSyntax: func(e *Error, def *Definition) string {
		if def == nil {
			return "Invalid syntax: " + e.Message
		}
		return fmt.Sprintf("Invalid syntax: %s\nUsage: /%s", e.Message, def.Usage())
	},
	KindNoPermission: func(e *Error, _ *Definition) string {
		return "You do not have permission to execute this command: " + e.Message
	},
	KindInvalidSender: func(e *Error, _ *Definition) string {
		return "You cannot execute this command: " + e.Message
	},
	KindExecution: func(e *Error, _ *Definition) string {
		return e.Message
	},
}

// Pipeline is the single place failures are reported from.
type Pipeline struct {
	formatter domain.TextFormatter
	logger    Logger
	newID     func() string
}

func NewPipeline(formatter domain.TextFormatter, logger Logger) *Pipeline {
	return &Pipeline{formatter: formatter, logger: logger, newID: uuid.NewString}
}

// Report sends exactly one message to the issuer and returns the failure
// kind. Unexpected failures are logged with their stack and shown only as an
// incident id.
func (p *Pipeline) Report(ctx context.Context, issuer domain.Issuer, def *Definition, err error) *Error {
	var cmdErr *Error
	if !errors.As(err, &cmdErr) {
		cmdErr = ExecutionFailure(err)
	}

	shown := cmdErr
	if cmdErr.Kind == KindExecution && cmdErr.Err != nil {
		incident := p.newID()
		name := "<unknown>"
		if def != nil {
			name = def.Name
		}
		p.logger.Printf("commands: incident %s: %s ran by %s: %+v", incident, name, issuerName(issuer), cmdErr.Err)
		shown = &Error{
			Kind:    KindExecution,
			Message: fmt.Sprintf("An error occurred while executing this command (incident %s).", incident),
			Err:     cmdErr.Err,
		}
	}

	handler, ok := failureHandlers[shown.Kind]
	if !ok {
		handler = failureHandlers[KindExecution]
	}
	text := p.render(errorTemplate) + handler(shown, def)
	if issuer != nil {
		if sendErr := issuer.SendMessage(ctx, text); sendErr != nil {
			p.logger.Printf("commands: report to %s: %v", issuerName(issuer), sendErr)
		}
	}
	return shown
}

func (p *Pipeline) render(markup string) string {
	if p.formatter == nil {
		return markup
	}
	return p.formatter.Render(markup)
}

func issuerName(issuer domain.Issuer) string {
	if issuer == nil {
		return "<nil>"
	}
	return issuer.Name()
}

func outcomeOf(err error) domain.CommandOutcome {
	if err == nil {
		return domain.OutcomeDone
	}
	switch KindOf(err) {
	case KindInvalidSyntax:
		return domain.OutcomeInvalidSyntax
	case KindNoPermission:
		return domain.OutcomeNoPermission
	case KindInvalidSender:
		return domain.OutcomeInvalidSender
	default:
		return domain.OutcomeExecutionError
	}
}

func suggestionSuffix(suggestions []string) string {
	if len(suggestions) == 0 {
		return ""
	}
	return ", did you mean " + strings.Join(suggestions, ", ") + "?"
}
