// Package achievements: repository.go works with the achievements and
// user_achievements tables.
package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"bahth.org/engagement/internal/common"
	"bahth.org/engagement/internal/db/postgres"
)

// Repository provides catalog and unlock storage.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the achievements repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListCatalog returns every achievement ordered by threshold, then code.
func (r *Repository) ListCatalog(ctx context.Context) ([]Achievement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, code, title, description, threshold, icon, category, created_at
		FROM achievements
		ORDER BY threshold ASC, code ASC
	`)
	if err != nil {
		return nil, common.Storage("list achievements", err)
	}
	defer rows.Close()

	var out []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.Code, &a.Title, &a.Description, &a.Threshold, &a.Icon, &a.Category, &a.CreatedAt); err != nil {
			return nil, common.Storage("scan achievement", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Storage("list achievements", err)
	}
	return out, nil
}

// UnlockedIDs returns the ids of achievements userID already holds.
func (r *Repository) UnlockedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT achievement_id FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, common.Storage("list unlocked ids", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, common.Storage("scan unlocked id", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, common.Storage("list unlocked ids", err)
	}
	return ids, nil
}

// Unlock records the unlock. Reports false when the pair already exists,
// including when a concurrent evaluation won the insert.
func (r *Repository) Unlock(ctx context.Context, userID, achievementID string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id, unlocked_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, userID, achievementID, at)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return false, nil
		}
		return false, common.Storage("unlock achievement", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListUnlocked returns userID's unlocks joined with the catalog, newest first.
func (r *Repository) ListUnlocked(ctx context.Context, userID string) ([]UserAchievement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ua.user_id, ua.achievement_id, ua.unlocked_at,
		       a.id, a.code, a.title, a.description, a.threshold, a.icon, a.category, a.created_at
		FROM user_achievements ua
		JOIN achievements a ON a.id = ua.achievement_id
		WHERE ua.user_id = $1
		ORDER BY ua.unlocked_at DESC, a.threshold DESC
	`, userID)
	if err != nil {
		return nil, common.Storage("list user achievements", err)
	}
	defer rows.Close()

	var out []UserAchievement
	for rows.Next() {
		var ua UserAchievement
		a := &ua.Achievement
		if err := rows.Scan(
			&ua.UserID, &ua.AchievementID, &ua.UnlockedAt,
			&a.ID, &a.Code, &a.Title, &a.Description, &a.Threshold, &a.Icon, &a.Category, &a.CreatedAt,
		); err != nil {
			return nil, common.Storage("scan user achievement", err)
		}
		out = append(out, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Storage("list user achievements", err)
	}
	return out, nil
}

// CountUnlocked returns how many achievements userID holds.
func (r *Repository) CountUnlocked(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_achievements WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, common.Storage("count user achievements", err)
	}
	return n, nil
}

// Insert adds a catalog entry unless its code exists. Reports whether a row was written.
func (r *Repository) Insert(ctx context.Context, a *Achievement) (bool, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO achievements (id, code, title, description, threshold, icon, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO NOTHING
	`, a.ID, a.Code, a.Title, a.Description, a.Threshold, a.Icon, a.Category, a.CreatedAt)
	if err != nil {
		return false, common.Storage("insert achievement", fmt.Errorf("%s: %w", a.Code, err))
	}
	return tag.RowsAffected() == 1, nil
}
