package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"simplix/internal/domain"
)

func (s *Store) Attribute(ctx context.Context, actorID string, attr domain.Attribute) (domain.AttributeInstance, bool, error) {
	return attribute(ctx, s.db, actorID, attr)
}

func attribute(ctx context.Context, q rowQuerier, actorID string, attr domain.Attribute) (domain.AttributeInstance, bool, error) {
	const query = `
SELECT base, modifiers
FROM attributes
WHERE actor_id = ? AND attribute = ?
LIMIT 1;
`

	inst := domain.AttributeInstance{Attribute: attr}
	var modifiers sql.NullString
	err := q.QueryRowContext(ctx, query, actorID, string(attr)).Scan(&inst.Base, &modifiers)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AttributeInstance{}, false, nil
	}
	if err != nil {
		return domain.AttributeInstance{}, false, fmt.Errorf("sqlite: get attribute: %w", err)
	}
	inst.Modifiers = decodeModifiers(modifiers.String)
	return inst, true, nil
}

// SetAttribute stores the base value and modifiers of one attribute.
func (s *Store) SetAttribute(ctx context.Context, actorID string, inst domain.AttributeInstance) error {
	return saveAttribute(ctx, s.db, actorID, inst)
}

func saveAttribute(ctx context.Context, ex execer, actorID string, inst domain.AttributeInstance) error {
	const stmt = `
INSERT INTO attributes (actor_id, attribute, base, modifiers, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(actor_id, attribute) DO UPDATE SET
	base=excluded.base,
	modifiers=excluded.modifiers,
	updated_at=excluded.updated_at;
`

	_, err := ex.ExecContext(ctx, stmt, actorID, string(inst.Attribute), inst.Base, encodeModifiers(inst.Modifiers), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite: save attribute: %w", err)
	}
	return nil
}

func (s *Store) ClearModifiers(ctx context.Context, actorID string, attr domain.Attribute) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin clear modifiers: %w", err)
	}
	defer tx.Rollback()

	inst, ok, err := attribute(ctx, tx, actorID, attr)
	if err != nil || !ok {
		return 0, err
	}
	removed := len(inst.Modifiers)
	inst.Modifiers = nil
	if err := saveAttribute(ctx, tx, actorID, inst); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit clear modifiers: %w", err)
	}
	return removed, nil
}

func encodeModifiers(mods []domain.AttributeModifier) interface{} {
	if len(mods) == 0 {
		return nil
	}
	b, err := json.Marshal(mods)
	if err != nil {
		return nil
	}
	return string(b)
}

func decodeModifiers(raw string) []domain.AttributeModifier {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var mods []domain.AttributeModifier
	if err := json.Unmarshal([]byte(raw), &mods); err != nil {
		return nil
	}
	return mods
}

var _ domain.AttributeStore = (*Store)(nil)
