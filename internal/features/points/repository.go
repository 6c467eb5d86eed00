// Package points: repository.go works with the point_ledgers and point_events tables.
// A credit is one database transaction, ledger and event commit together or not at all.
package points

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bahth.org/engagement/internal/common"
)

// Repository provides ledger and event storage.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the points repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Credit adds ev.Points to ev.UserID's ledger and appends ev, creating the
// ledger on first use. The upsert takes the ledger row lock, so concurrent
// credits to one user apply one after another and none is lost.
// ev.ID and ev.LedgerID are filled in on success.
func (r *Repository) Credit(ctx context.Context, ev *Event) (*Ledger, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, common.Storage("begin credit", err)
	}
	defer tx.Rollback(ctx)

	var l Ledger
	err = tx.QueryRow(ctx, `
		INSERT INTO point_ledgers (user_id, total_points, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET total_points = point_ledgers.total_points + EXCLUDED.total_points,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, total_points, created_at, updated_at
	`, ev.UserID, ev.Points, ev.CreatedAt).Scan(&l.ID, &l.UserID, &l.TotalPoints, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, common.Storage("upsert ledger", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO point_events (ledger_id, user_id, points, action, reason, entity_id, entity_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, l.ID, ev.UserID, ev.Points, string(ev.Action), ev.Reason, ev.EntityID, ev.EntityType, ev.CreatedAt).Scan(&ev.ID)
	if err != nil {
		return nil, common.Storage("insert event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.Storage("commit credit", err)
	}
	ev.LedgerID = l.ID
	return &l, nil
}

// GetTotal returns userID's total, 0 when the user has no ledger.
func (r *Repository) GetTotal(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT total_points FROM point_ledgers WHERE user_id = $1`, userID,
	).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, common.Storage("get total", err)
	}
	return total, nil
}

// GetLedger returns userID's ledger or common.ErrNotFound.
func (r *Repository) GetLedger(ctx context.Context, userID string) (*Ledger, error) {
	var l Ledger
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, total_points, created_at, updated_at
		FROM point_ledgers
		WHERE user_id = $1
	`, userID).Scan(&l.ID, &l.UserID, &l.TotalPoints, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.Storage("get ledger", err)
	}
	return &l, nil
}

// GetHistory returns the newest limit events of userID, newest first.
// id breaks ties between events with the same timestamp.
func (r *Repository) GetHistory(ctx context.Context, userID string, limit int) ([]*Event, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, ledger_id, user_id, points, action, reason, entity_id, entity_type, created_at
		FROM point_events
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, common.Storage("get history", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(
			&e.ID, &e.LedgerID, &e.UserID, &e.Points, &action, &e.Reason,
			&e.EntityID, &e.EntityType, &e.CreatedAt,
		); err != nil {
			return nil, common.Storage("scan event", err)
		}
		e.Action = Action(action)
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Storage("get history", err)
	}
	return events, nil
}

// ListLedgers returns every ledger ordered by user id.
func (r *Repository) ListLedgers(ctx context.Context) ([]*Ledger, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, total_points, created_at, updated_at
		FROM point_ledgers
		ORDER BY user_id
	`)
	if err != nil {
		return nil, common.Storage("list ledgers", err)
	}
	defer rows.Close()

	var out []*Ledger
	for rows.Next() {
		var l Ledger
		if err := rows.Scan(&l.ID, &l.UserID, &l.TotalPoints, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, common.Storage("scan ledger", err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Storage("list ledgers", err)
	}
	return out, nil
}
