// Package ranking: service.go computes leaderboards, standings and
// researcher composite scores.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/common"
	"bahth.org/engagement/internal/features/contributions"
	"bahth.org/engagement/internal/features/members"
	"bahth.org/engagement/internal/metrics"
)

// Page size limits shared by the leaderboard and the researcher ranking.
const (
	DefaultLimit = 10
	MaxLimit     = 50

	// MaxPage keeps (page-1)*limit inside int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Composite score weights.
const (
	WeightPaper        = 10
	WeightReview       = 5
	WeightLike         = 2
	WeightReviewRating = 20
)

// Store is the ranking persistence. *Repository implements it.
type Store interface {
	TopByPoints(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	StandingStats(ctx context.Context, userID string) (StandingStats, error)
	UpsertProfile(ctx context.Context, p *ResearcherProfile) error
	GetProfile(ctx context.Context, userID string) (*ResearcherProfile, error)
	ListProfiles(ctx context.Context, key SortKey, offset, limit int) ([]ResearcherProfile, error)
	CountProfiles(ctx context.Context) (int64, error)
}

// Contributions supplies score inputs. *contributions.Repository implements it.
type Contributions interface {
	Counts(ctx context.Context, userID string) (contributions.Counts, error)
	ResearcherIDs(ctx context.Context) ([]string, error)
}

// Directory resolves user display data. *members.Service implements it.
type Directory interface {
	GetByID(ctx context.Context, id string) (*members.Member, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*members.Member, error)
}

// AchievementCounter counts a user's unlocks. *achievements.Service implements it.
type AchievementCounter interface {
	CountUnlocked(ctx context.Context, userID string) (int, error)
}

// Service serves leaderboards and researcher rankings.
type Service struct {
	store         Store
	contributions Contributions
	directory     Directory
	achievements  AchievementCounter
	now           func() time.Time
}

// NewService creates the ranking service.
func NewService(store Store, contrib Contributions, directory Directory, counter AchievementCounter) *Service {
	return &Service{
		store:         store,
		contributions: contrib,
		directory:     directory,
		achievements:  counter,
		now:           time.Now,
	}
}

// ClampLimit normalises a requested page size to 1..MaxLimit, 0 means DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// ParseSortKey validates s. Empty means SortTotalScore.
func ParseSortKey(s string) (SortKey, error) {
	if strings.TrimSpace(s) == "" {
		return SortTotalScore, nil
	}
	key := SortKey(strings.TrimSpace(s))
	if _, ok := sortColumns[key]; !ok {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidSortKey, s)
	}
	return key, nil
}

// ComputeScore is the researcher composite score.
func ComputeScore(c contributions.Counts) float64 {
	return float64(c.PapersCount*WeightPaper+c.ReviewsCount*WeightReview+c.LikesReceived*WeightLike) +
		c.AvgReviewRating*WeightReviewRating
}

// GetTopByPoints returns the highest ledgers with their position as rank.
func (s *Service) GetTopByPoints(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	entries, err := s.store.TopByPoints(ctx, ClampLimit(limit))
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(entries))
	for i := range entries {
		entries[i].Rank = i + 1
		ids[i] = entries[i].UserID
	}

	found := s.lookupMembers(ctx, ids)
	for i := range entries {
		if m, ok := found[entries[i].UserID]; ok {
			entries[i].Member = m
			entries[i].DisplayName = m.DisplayName()
		}
	}
	if entries == nil {
		entries = []LeaderboardEntry{}
	}
	return entries, nil
}

// GetUserStanding returns the user's competition rank: one more than the
// number of ledgers with a strictly greater total. Equal totals share a rank.
func (s *Service) GetUserStanding(ctx context.Context, userID string) (*Standing, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.ErrInvalidUser
	}
	stats, err := s.store.StandingStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	st := &Standing{
		UserID:      userID,
		TotalPoints: stats.TotalPoints,
		Rank:        stats.Above + 1,
		TotalUsers:  stats.TotalUsers,
	}
	if stats.TotalUsers > 0 {
		st.AveragePoints = int64(math.Round(float64(stats.SumPoints) / float64(stats.TotalUsers)))
	}
	if s.achievements != nil {
		n, err := s.achievements.CountUnlocked(ctx, userID)
		if err != nil {
			return nil, err
		}
		st.AchievementsCount = n
	}
	return st, nil
}

// RecomputeResearcherScore rebuilds userID's profile from current counts
// and overwrites the stored one. Unknown users get common.ErrNotFound.
func (s *Service) RecomputeResearcherScore(ctx context.Context, userID string) (*ResearcherProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, common.ErrInvalidUser
	}

	var member *members.Member
	if s.directory != nil {
		m, err := s.directory.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		member = m
	}

	counts, err := s.contributions.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &ResearcherProfile{
		UserID:          userID,
		TotalScore:      ComputeScore(counts),
		PapersCount:     counts.PapersCount,
		ReviewsCount:    counts.ReviewsCount,
		LikesReceived:   counts.LikesReceived,
		AvgReviewRating: counts.AvgReviewRating,
		UpdatedAt:       s.now().UTC(),
	}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return nil, err
	}
	metrics.ProfilesRecomputed.Inc()

	log.WithFields(log.Fields{
		"user_id": userID,
		"score":   p.TotalScore,
	}).Debug("researcher score recomputed")

	p.Member = member
	return p, nil
}

// RecomputeAll recomputes every researcher. Users missing from the
// directory are skipped. Returns how many profiles were written.
func (s *Service) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := s.contributions.ResearcherIDs(ctx)
	if err != nil {
		return 0, err
	}

	done := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := s.RecomputeResearcherScore(ctx, id); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				log.WithField("user_id", id).Debug("researcher without user row skipped")
				continue
			}
			errs = append(errs, fmt.Errorf("user %s: %w", id, err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

// GetResearcherProfile returns the stored profile, common.ErrNotFound
// when it was never computed.
func (s *Service) GetResearcherProfile(ctx context.Context, userID string) (*ResearcherProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.ErrInvalidUser
	}
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m, ok := s.lookupMembers(ctx, []string{userID})[userID]; ok {
		p.Member = m
	}
	return p, nil
}

// GetRanking returns one page of researchers ordered by sortKey descending.
// Rank is skip+i+1, so consecutive pages give contiguous, disjoint bands.
func (s *Service) GetRanking(ctx context.Context, sortKey string, page, limit int) (*RankingPage, error) {
	key, err := ParseSortKey(sortKey)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		return nil, fmt.Errorf("%w: page %d", common.ErrInvalidArgument, page)
	}
	limit = ClampLimit(limit)
	skip := (page - 1) * limit

	total, err := s.store.CountProfiles(ctx)
	if err != nil {
		return nil, err
	}
	profiles, err := s.store.ListProfiles(ctx, key, skip, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.UserID
	}
	found := s.lookupMembers(ctx, ids)

	out := make([]RankedResearcher, len(profiles))
	for i, p := range profiles {
		p.Member = found[p.UserID]
		out[i] = RankedResearcher{Rank: skip + i + 1, ResearcherProfile: p}
	}

	return &RankingPage{
		SortBy:      key,
		Researchers: out,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}, nil
}

// lookupMembers decorates rows with display data. A failed lookup only
// costs the decoration.
func (s *Service) lookupMembers(ctx context.Context, ids []string) map[string]*members.Member {
	if s.directory == nil || len(ids) == 0 {
		return nil
	}
	found, err := s.directory.GetByIDs(ctx, ids)
	if err != nil {
		log.WithError(err).Warn("member lookup failed, returning undecorated rows")
		return nil
	}
	return found
}
