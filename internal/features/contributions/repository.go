// Package contributions counts a researcher's published work and the
// reactions to it, read from the platform's papers, paper_authors,
// reviews and likes tables.
package contributions

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"bahth.org/engagement/internal/common"
)

// PublishedStatus is the paper status that counts as published.
const PublishedStatus = "PUBLISHED"

// Counts are the inputs of a researcher score.
type Counts struct {
	PapersCount     int64   `json:"papersCount"`     // published papers the user co-authored
	ReviewsCount    int64   `json:"reviewsCount"`    // reviews the user wrote
	LikesReceived   int64   `json:"likesReceived"`   // likes on the user's papers
	AvgReviewRating float64 `json:"avgReviewRating"` // mean rating of reviews on the user's papers, 0 when none
}

// Repository reads contribution counts.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the contributions repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Counts reads all four counts for userID in one statement, so they come
// from a single snapshot.
func (r *Repository) Counts(ctx context.Context, userID string) (Counts, error) {
	if strings.TrimSpace(userID) == "" {
		return Counts{}, common.ErrInvalidUser
	}

	var c Counts
	err := r.db.QueryRow(ctx, `
		WITH authored AS (
			SELECT pa.paper_id
			FROM paper_authors pa
			WHERE pa.user_id = $1
		)
		SELECT
			(SELECT COUNT(*) FROM papers p
			  WHERE p.id IN (SELECT paper_id FROM authored) AND p.status = $2),
			(SELECT COUNT(*) FROM reviews rv WHERE rv.reviewer_id = $1),
			(SELECT COUNT(*) FROM likes l
			  WHERE l.paper_id IN (SELECT paper_id FROM authored)),
			(SELECT COALESCE(AVG(rv.rating), 0)::float8 FROM reviews rv
			  WHERE rv.paper_id IN (SELECT paper_id FROM authored))
	`, userID, PublishedStatus).Scan(&c.PapersCount, &c.ReviewsCount, &c.LikesReceived, &c.AvgReviewRating)
	if err != nil {
		return Counts{}, common.Storage("read contributions", err)
	}
	return c, nil
}

// ResearcherIDs returns every user who authored a paper or wrote a review.
func (r *Repository) ResearcherIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id FROM paper_authors
		UNION
		SELECT reviewer_id FROM reviews
		ORDER BY 1
	`)
	if err != nil {
		return nil, common.Storage("list researchers", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, common.Storage("scan researcher", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Storage("list researchers", err)
	}
	return ids, nil
}
