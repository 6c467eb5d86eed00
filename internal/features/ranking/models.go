// Package ranking derives leaderboards from point totals and keeps the
// researcher composite scores.
// models.go describes leaderboard rows, standings and researcher profiles.
package ranking

import (
	"time"

	"bahth.org/engagement/internal/features/members"
)

// SortKey orders the researcher ranking.
type SortKey string

const (
	SortTotalScore      SortKey = "totalScore"
	SortPapersCount     SortKey = "papersCount"
	SortReviewsCount    SortKey = "reviewsCount"
	SortAvgReviewRating SortKey = "avgReviewRating"
)

// sortColumns whitelists the columns a SortKey may put into ORDER BY.
var sortColumns = map[SortKey]string{
	SortTotalScore:      "total_score",
	SortPapersCount:     "papers_count",
	SortReviewsCount:    "reviews_count",
	SortAvgReviewRating: "avg_review_rating",
}

// LeaderboardEntry is one row of the points leaderboard.
// Rank is the position in the returned list.
type LeaderboardEntry struct {
	Rank        int             `json:"rank"`
	UserID      string          `json:"userId"`
	TotalPoints int64           `json:"totalPoints"`
	DisplayName string          `json:"displayName,omitempty"`
	Member      *members.Member `json:"user,omitempty"`
}

// StandingStats are the raw numbers a standing is computed from.
type StandingStats struct {
	TotalPoints int64 // the user's total, 0 without a ledger
	TotalUsers  int64 // ledgers in the system
	SumPoints   int64 // sum over all ledgers
	Above       int64 // ledgers with a strictly greater total
}

// Standing is a user's position among all ledgers.
type Standing struct {
	UserID            string `json:"userId"`
	TotalPoints       int64  `json:"totalPoints"`
	Rank              int64  `json:"rank"`
	TotalUsers        int64  `json:"totalUsers"`
	AveragePoints     int64  `json:"averagePoints"`
	AchievementsCount int    `json:"achievementsCount"`
}

// ResearcherProfile is the stored composite score of one researcher.
type ResearcherProfile struct {
	UserID          string          `db:"user_id" json:"userId"`
	TotalScore      float64         `db:"total_score" json:"totalScore"`
	PapersCount     int64           `db:"papers_count" json:"papersCount"`
	ReviewsCount    int64           `db:"reviews_count" json:"reviewsCount"`
	LikesReceived   int64           `db:"likes_received" json:"likesReceived"`
	AvgReviewRating float64         `db:"avg_review_rating" json:"avgReviewRating"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
	Member          *members.Member `json:"user,omitempty"`
}

// RankedResearcher is a profile with its display rank for one page.
type RankedResearcher struct {
	Rank int `json:"rank"`
	ResearcherProfile
}

// Pagination describes one page of the ranking.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// RankingPage is one page of researchers under a sort key.
type RankingPage struct {
	SortBy      SortKey            `json:"sortBy"`
	Researchers []RankedResearcher `json:"researchers"`
	Pagination  Pagination         `json:"pagination"`
}
