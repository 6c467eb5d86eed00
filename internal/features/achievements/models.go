// Package achievements unlocks point-threshold badges.
// models.go describes the catalog entry and the per-user unlock record.
package achievements

import "time"

// Category groups catalog entries for display.
type Category string

const (
	CategoryPublishing Category = "publishing"
	CategoryReviewing  Category = "reviewing"
	CategoryEngagement Category = "engagement"
	CategoryGeneral    Category = "general"
)

// Achievement is one catalog entry. A user qualifies once their
// ledger total reaches Threshold.
type Achievement struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`               // stable seed key
	Title       string    `db:"title" json:"title"`             // Arabic display name
	Description string    `db:"description" json:"description"` // Arabic
	Threshold   int64     `db:"threshold" json:"threshold"`     // points required, >= 0
	Icon        string    `db:"icon" json:"icon"`
	Category    Category  `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// UserAchievement records that UserID unlocked AchievementID.
// (user_id, achievement_id) is unique.
type UserAchievement struct {
	UserID        string      `db:"user_id" json:"userId"`
	AchievementID string      `db:"achievement_id" json:"achievementId"`
	UnlockedAt    time.Time   `db:"unlocked_at" json:"unlockedAt"`
	Achievement   Achievement `json:"achievement"`
}
