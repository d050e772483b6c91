package domain

import "time"

type CommandOutcome string

const (
	OutcomeDone           CommandOutcome = "done"
	OutcomeInvalidSyntax  CommandOutcome = "invalid_syntax"
	OutcomeNoPermission   CommandOutcome = "no_permission"
	OutcomeInvalidSender  CommandOutcome = "invalid_sender"
	OutcomeExecutionError CommandOutcome = "execution_error"
)

// CommandRecord is the audit entry written once per dispatched line.
type CommandRecord struct {
	ID        string         `json:"id"`
	Issuer    string         `json:"issuer"`
	Line      string         `json:"line"`
	Command   string         `json:"command,omitempty"`
	Outcome   CommandOutcome `json:"outcome"`
	Detail    string         `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
