// Package notifications writes notification rows for the platform to deliver.
// Delivery itself happens elsewhere.
package notifications

import "time"

// Type is a notification kind understood by the platform UI.
type Type string

const (
	TypeAchievementUnlocked Type = "ACHIEVEMENT_UNLOCKED"
)

// Notification is one row of the notifications table.
type Notification struct {
	ID         string    `db:"id" json:"id"` // uuid
	UserID     string    `db:"user_id" json:"userId"`
	Type       Type      `db:"type" json:"type"`
	Title      string    `db:"title" json:"title"`
	Message    string    `db:"message" json:"message"`
	EntityID   *string   `db:"entity_id" json:"entityId,omitempty"`
	EntityType *string   `db:"entity_type" json:"entityType,omitempty"`
	IsRead     bool      `db:"is_read" json:"isRead"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
