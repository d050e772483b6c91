package events

import (
	"time"

	"simplix/internal/domain"
)

// CommandRecordDTO is the wire form of a command record for the API and logs.
type CommandRecordDTO struct {
	ID        string `json:"id"`
	Issuer    string `json:"issuer"`
	Line      string `json:"line"`
	Command   string `json:"command,omitempty"`
	Outcome   string `json:"outcome"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewCommandRecordDTO(record domain.CommandRecord) CommandRecordDTO {
	return CommandRecordDTO{
		ID:        record.ID,
		Issuer:    record.Issuer,
		Line:      record.Line,
		Command:   record.Command,
		Outcome:   string(record.Outcome),
		Detail:    record.Detail,
		Timestamp: record.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
