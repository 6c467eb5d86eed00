// Package notifications: repository.go inserts into the notifications table.
package notifications

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"bahth.org/engagement/internal/common"
)

// Repository provides notification storage.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the notifications repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert stores n.
func (r *Repository) Insert(ctx context.Context, n *Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, entity_id, entity_type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.EntityID, n.EntityType, n.IsRead, n.CreatedAt)
	if err != nil {
		return common.Storage("insert notification", err)
	}
	return nil
}
