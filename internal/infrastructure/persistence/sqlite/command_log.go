package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"simplix/internal/domain"
)

func (s *Store) SaveCommandRecord(ctx context.Context, record *domain.CommandRecord) error {
	if record == nil {
		return fmt.Errorf("sqlite: command record nil")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	const stmt = `
INSERT INTO command_log (id, issuer, line, command, outcome, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING;
`

	_, err := s.db.ExecContext(
		ctx,
		stmt,
		record.ID,
		record.Issuer,
		record.Line,
		record.Command,
		string(record.Outcome),
		record.Detail,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: save command record: %w", err)
	}
	return nil
}

func (s *Store) ListCommandRecords(ctx context.Context, limit int) ([]*domain.CommandRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT id, issuer, line, command, outcome, detail, created_at
FROM command_log
ORDER BY created_at DESC
LIMIT ?;
`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list command records: %w", err)
	}
	defer rows.Close()

	var out []*domain.CommandRecord
	for rows.Next() {
		var (
			record          domain.CommandRecord
			command, detail sql.NullString
			outcome         string
			createdAt       sql.NullTime
		)
		if err := rows.Scan(&record.ID, &record.Issuer, &record.Line, &command, &outcome, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan command record: %w", err)
		}
		record.Command = command.String
		record.Outcome = domain.CommandOutcome(outcome)
		record.Detail = detail.String
		record.CreatedAt = createdAt.Time
		out = append(out, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list command record rows: %w", err)
	}

	return out, nil
}

var _ domain.CommandLogRepository = (*Store)(nil)
