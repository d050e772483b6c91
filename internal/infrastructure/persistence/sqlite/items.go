package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"simplix/internal/domain"
)

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) HeldItem(ctx context.Context, actorID string, hand domain.Hand) (domain.Item, error) {
	return heldItem(ctx, s.db, actorID, hand)
}

func heldItem(ctx context.Context, q rowQuerier, actorID string, hand domain.Hand) (domain.Item, error) {
	const query = `
SELECT type, display_name, lore
FROM held_items
WHERE actor_id = ? AND hand = ?
LIMIT 1;
`

	var item domain.Item
	var displayName, lore sql.NullString
	err := q.QueryRowContext(ctx, query, actorID, string(hand)).Scan(&item.Type, &displayName, &lore)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{Type: domain.ItemTypeAir}, nil
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("sqlite: get held item: %w", err)
	}
	item.DisplayName = displayName.String
	item.Lore = decodeLines(lore.String)
	return item, nil
}

// SetHeldItem replaces the item in a hand. An empty item clears the hand.
func (s *Store) SetHeldItem(ctx context.Context, actorID string, hand domain.Hand, item domain.Item) error {
	return saveHeldItem(ctx, s.db, actorID, hand, item)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveHeldItem(ctx context.Context, ex execer, actorID string, hand domain.Hand, item domain.Item) error {
	if item.IsEmpty() {
		if _, err := ex.ExecContext(ctx, `DELETE FROM held_items WHERE actor_id = ? AND hand = ?`, actorID, string(hand)); err != nil {
			return fmt.Errorf("sqlite: clear held item: %w", err)
		}
		return nil
	}

	const stmt = `
INSERT INTO held_items (actor_id, hand, type, display_name, lore, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(actor_id, hand) DO UPDATE SET
	type=excluded.type,
	display_name=excluded.display_name,
	lore=excluded.lore,
	updated_at=excluded.updated_at;
`

	_, err := ex.ExecContext(
		ctx,
		stmt,
		actorID,
		string(hand),
		item.Type,
		item.DisplayName,
		encodeLines(item.Lore),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save held item: %w", err)
	}
	return nil
}

// UpdateHeldItem runs fn inside a transaction. An error from fn rolls back
// and is returned unchanged.
func (s *Store) UpdateHeldItem(ctx context.Context, actorID string, hand domain.Hand, fn domain.ItemMutation) (domain.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Item{}, fmt.Errorf("sqlite: begin item update: %w", err)
	}
	defer tx.Rollback()

	current, err := heldItem(ctx, tx, actorID, hand)
	if err != nil {
		return domain.Item{}, err
	}
	next, err := fn(current.Clone())
	if err != nil {
		return domain.Item{}, err
	}
	if err := saveHeldItem(ctx, tx, actorID, hand, next); err != nil {
		return domain.Item{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Item{}, fmt.Errorf("sqlite: commit item update: %w", err)
	}
	return next, nil
}

var _ domain.ItemStore = (*Store)(nil)
