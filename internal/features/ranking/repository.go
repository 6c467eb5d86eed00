// Package ranking: repository.go reads point_ledgers and owns researcher_profiles.
package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bahth.org/engagement/internal/common"
)

// Repository provides leaderboard and researcher profile storage.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the ranking repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// TopByPoints returns the limit highest ledgers. Earlier ledgers win ties,
// user_id settles ledgers created at the same instant.
func (r *Repository) TopByPoints(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, total_points
		FROM point_ledgers
		ORDER BY total_points DESC, created_at ASC, user_id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, common.Storage("top by points", err)
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.TotalPoints); err != nil {
			return nil, common.Storage("scan leaderboard entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Storage("top by points", err)
	}
	return out, nil
}

// StandingStats reads the user's total and the ledger aggregates in one statement.
func (r *Repository) StandingStats(ctx context.Context, userID string) (StandingStats, error) {
	var s StandingStats
	err := r.db.QueryRow(ctx, `
		WITH me AS (
			SELECT COALESCE((SELECT total_points FROM point_ledgers WHERE user_id = $1), 0) AS total
		)
		SELECT
			me.total,
			(SELECT COUNT(*) FROM point_ledgers),
			(SELECT COALESCE(SUM(total_points), 0) FROM point_ledgers)::bigint,
			(SELECT COUNT(*) FROM point_ledgers l WHERE l.total_points > me.total)
		FROM me
	`, userID).Scan(&s.TotalPoints, &s.TotalUsers, &s.SumPoints, &s.Above)
	if err != nil {
		return StandingStats{}, common.Storage("standing stats", err)
	}
	return s, nil
}

// UpsertProfile writes every field of p, replacing any previous row.
func (r *Repository) UpsertProfile(ctx context.Context, p *ResearcherProfile) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO researcher_profiles
			(user_id, total_score, papers_count, reviews_count, likes_received, avg_review_rating, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET total_score = EXCLUDED.total_score,
		    papers_count = EXCLUDED.papers_count,
		    reviews_count = EXCLUDED.reviews_count,
		    likes_received = EXCLUDED.likes_received,
		    avg_review_rating = EXCLUDED.avg_review_rating,
		    updated_at = EXCLUDED.updated_at
	`, p.UserID, p.TotalScore, p.PapersCount, p.ReviewsCount, p.LikesReceived, p.AvgReviewRating, p.UpdatedAt)
	if err != nil {
		return common.Storage("upsert researcher profile", err)
	}
	return nil
}

// GetProfile returns the stored profile or common.ErrNotFound.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*ResearcherProfile, error) {
	var p ResearcherProfile
	err := r.db.QueryRow(ctx, `
		SELECT user_id, total_score, papers_count, reviews_count, likes_received, avg_review_rating, updated_at
		FROM researcher_profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.TotalScore, &p.PapersCount, &p.ReviewsCount, &p.LikesReceived, &p.AvgReviewRating, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.Storage("get researcher profile", err)
	}
	return &p, nil
}

// ListProfiles returns one page ordered by key descending, user_id breaking ties.
func (r *Repository) ListProfiles(ctx context.Context, key SortKey, offset, limit int) ([]ResearcherProfile, error) {
	column, ok := sortColumns[key]
	if !ok {
		return nil, common.ErrInvalidSortKey
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`
		SELECT user_id, total_score, papers_count, reviews_count, likes_received, avg_review_rating, updated_at
		FROM researcher_profiles
		ORDER BY %s DESC, user_id ASC
		OFFSET $1 LIMIT $2
	`, column), offset, limit)
	if err != nil {
		return nil, common.Storage("list researcher profiles", err)
	}
	defer rows.Close()

	var out []ResearcherProfile
	for rows.Next() {
		var p ResearcherProfile
		if err := rows.Scan(&p.UserID, &p.TotalScore, &p.PapersCount, &p.ReviewsCount, &p.LikesReceived, &p.AvgReviewRating, &p.UpdatedAt); err != nil {
			return nil, common.Storage("scan researcher profile", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Storage("list researcher profiles", err)
	}
	return out, nil
}

// CountProfiles returns how many profiles exist.
func (r *Repository) CountProfiles(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM researcher_profiles`).Scan(&n); err != nil {
		return 0, common.Storage("count researcher profiles", err)
	}
	return n, nil
}
