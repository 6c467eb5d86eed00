package ranking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"bahth.org/engagement/internal/common"
	"bahth.org/engagement/internal/features/contributions"
	"bahth.org/engagement/internal/features/members"
)

type ledgerRow struct {
	userID    string
	total     int64
	createdAt time.Time
}

// memStore keeps ledgers and profiles in memory and sorts like the SQL does.
type memStore struct {
	mu       sync.Mutex
	ledgers  []ledgerRow
	profiles map[string]ResearcherProfile
}

func newMemStore() *memStore {
	return &memStore{profiles: make(map[string]ResearcherProfile)}
}

func (m *memStore) TopByPoints(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := append([]ledgerRow(nil), m.ledgers...)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		if !rows[i].createdAt.Equal(rows[j].createdAt) {
			return rows[i].createdAt.Before(rows[j].createdAt)
		}
		return rows[i].userID < rows[j].userID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = LeaderboardEntry{UserID: r.userID, TotalPoints: r.total}
	}
	return out, nil
}

func (m *memStore) StandingStats(ctx context.Context, userID string) (StandingStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s StandingStats
	for _, r := range m.ledgers {
		if r.userID == userID {
			s.TotalPoints = r.total
		}
	}
	for _, r := range m.ledgers {
		s.TotalUsers++
		s.SumPoints += r.total
		if r.total > s.TotalPoints {
			s.Above++
		}
	}
	return s, nil
}

func (m *memStore) UpsertProfile(ctx context.Context, p *ResearcherProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.Member = nil
	m.profiles[p.UserID] = cp
	return nil
}

func (m *memStore) GetProfile(ctx context.Context, userID string) (*ResearcherProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &p, nil
}

func sortValue(p ResearcherProfile, key SortKey) float64 {
	switch key {
	case SortPapersCount:
		return float64(p.PapersCount)
	case SortReviewsCount:
		return float64(p.ReviewsCount)
	case SortAvgReviewRating:
		return p.AvgReviewRating
	}
	return p.TotalScore
}

func (m *memStore) ListProfiles(ctx context.Context, key SortKey, offset, limit int) ([]ResearcherProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]ResearcherProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		vi, vj := sortValue(all[i], key), sortValue(all[j], key)
		if vi != vj {
			return vi > vj
		}
		return all[i].UserID < all[j].UserID
	})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memStore) CountProfiles(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.profiles)), nil
}

type fakeContributions map[string]contributions.Counts

func (f fakeContributions) Counts(ctx context.Context, userID string) (contributions.Counts, error) {
	return f[userID], nil
}

func (f fakeContributions) ResearcherIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeDirectory map[string]*members.Member

func (d fakeDirectory) GetByID(ctx context.Context, id string) (*members.Member, error) {
	if m, ok := d[id]; ok {
		return m, nil
	}
	return nil, common.ErrNotFound
}

func (d fakeDirectory) GetByIDs(ctx context.Context, ids []string) (map[string]*members.Member, error) {
	out := make(map[string]*members.Member)
	for _, id := range ids {
		if m, ok := d[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

type fixedCounter int

func (c fixedCounter) CountUnlocked(ctx context.Context, userID string) (int, error) { return int(c), nil }

func TestComputeScoreScenario(t *testing.T) {
	got := ComputeScore(contributions.Counts{PapersCount: 3, ReviewsCount: 2, LikesReceived: 10, AvgReviewRating: 4.0})
	if got != 140 {
		t.Errorf("ComputeScore() = %v, want 140", got)
	}
}

func TestRecomputeResearcherScore(t *testing.T) {
	store := newMemStore()
	contrib := fakeContributions{"u1": {PapersCount: 3, ReviewsCount: 2, LikesReceived: 10, AvgReviewRating: 4.0}}
	dir := fakeDirectory{"u1": {ID: "u1", Name: "ليلى"}}
	svc := NewService(store, contrib, dir, nil)
	ctx := context.Background()

	p, err := svc.RecomputeResearcherScore(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalScore != 140 || p.Member == nil {
		t.Errorf("profile = %+v", p)
	}

	// Counts change, the stored profile is replaced wholesale.
	contrib["u1"] = contributions.Counts{PapersCount: 1}
	if _, err := svc.RecomputeResearcherScore(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	stored, err := svc.GetResearcherProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.TotalScore != 10 || stored.ReviewsCount != 0 || stored.LikesReceived != 0 || stored.AvgReviewRating != 0 {
		t.Errorf("profile not fully replaced: %+v", stored)
	}
}

func TestRecomputeUnknownUser(t *testing.T) {
	svc := NewService(newMemStore(), fakeContributions{}, fakeDirectory{}, nil)
	if _, err := svc.RecomputeResearcherScore(context.Background(), "ghost"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetResearcherProfile(context.Background(), "ghost"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("profile of never computed user error = %v, want ErrNotFound", err)
	}
}

func TestRecomputeAllSkipsUnknownUsers(t *testing.T) {
	store := newMemStore()
	contrib := fakeContributions{
		"a": {PapersCount: 1},
		"b": {ReviewsCount: 4},
		"x": {PapersCount: 9}, // no users row
	}
	dir := fakeDirectory{"a": {ID: "a"}, "b": {ID: "b"}}
	svc := NewService(store, contrib, dir, nil)

	n, err := svc.RecomputeAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("RecomputeAll() = %d, want 2", n)
	}
	if _, ok := store.profiles["x"]; ok {
		t.Error("profile written for a user without a users row")
	}
}

func seedProfiles(t *testing.T, n int) *Service {
	t.Helper()
	contrib := fakeContributions{}
	dir := fakeDirectory{}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("u%02d", i)
		// Pairs share a score so the user_id tie-break matters.
		contrib[id] = contributions.Counts{PapersCount: int64(i / 2), ReviewsCount: int64(n - i)}
		dir[id] = &members.Member{ID: id}
	}
	svc := NewService(newMemStore(), contrib, dir, nil)
	if _, err := svc.RecomputeAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestGetRankingPagesAreDisjointBands(t *testing.T) {
	svc := seedProfiles(t, 25)
	ctx := context.Background()

	seen := make(map[string]bool)
	var ranks []int
	for page := 1; page <= 3; page++ {
		res, err := svc.GetRanking(ctx, "papersCount", page, 10)
		if err != nil {
			t.Fatal(err)
		}
		if res.Pagination.Total != 25 || res.Pagination.TotalPages != 3 {
			t.Errorf("pagination = %+v", res.Pagination)
		}
		for _, r := range res.Researchers {
			if seen[r.UserID] {
				t.Errorf("user %s on more than one page", r.UserID)
			}
			seen[r.UserID] = true
			ranks = append(ranks, r.Rank)
		}
	}
	if len(ranks) != 25 {
		t.Fatalf("collected %d rows, want 25", len(ranks))
	}
	for i, r := range ranks {
		if r != i+1 {
			t.Fatalf("rank at %d = %d, want %d", i, r, i+1)
		}
	}
}

func TestGetRankingSortKeys(t *testing.T) {
	svc := seedProfiles(t, 6)
	ctx := context.Background()

	if _, err := svc.GetRanking(ctx, "downloads", 1, 10); !errors.Is(err, common.ErrInvalidSortKey) {
		t.Errorf("unknown key error = %v, want ErrInvalidSortKey", err)
	}

	res, err := svc.GetRanking(ctx, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if res.SortBy != SortTotalScore || res.Pagination.Page != 1 || res.Pagination.Limit != DefaultLimit {
		t.Errorf("defaults = %s %+v", res.SortBy, res.Pagination)
	}
	for i := 1; i < len(res.Researchers); i++ {
		if res.Researchers[i].TotalScore > res.Researchers[i-1].TotalScore {
			t.Errorf("not descending at %d", i)
		}
	}

	res, err = svc.GetRanking(ctx, "reviewsCount", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Researchers[0].UserID != "u00" {
		t.Errorf("top reviewer = %s, want u00", res.Researchers[0].UserID)
	}
}

func TestGetRankingPageBounds(t *testing.T) {
	svc := seedProfiles(t, 3)
	ctx := context.Background()

	for _, page := range []int{MaxPage + 1, MaxPage * 2, math.MaxInt} {
		if _, err := svc.GetRanking(ctx, "", page, MaxLimit); !errors.Is(err, common.ErrInvalidArgument) {
			t.Errorf("page %d error = %v, want ErrInvalidArgument", page, err)
		}
	}

	res, err := svc.GetRanking(ctx, "", MaxPage, MaxLimit)
	if err != nil {
		t.Fatalf("last allowed page: %v", err)
	}
	if len(res.Researchers) != 0 || res.Pagination.Page != MaxPage {
		t.Errorf("last allowed page = %+v", res.Pagination)
	}
}

func TestGetTopByPoints(t *testing.T) {
	store := newMemStore()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	store.ledgers = []ledgerRow{
		{"late", 100, base.Add(2 * time.Hour)},
		{"early", 100, base},
		{"low", 5, base},
		{"top", 300, base.Add(time.Hour)},
	}
	dir := fakeDirectory{"top": {ID: "top", Name: "منى"}}
	svc := NewService(store, fakeContributions{}, dir, nil)

	entries, err := svc.GetTopByPoints(context.Background(), 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"top", "early", "late"}
	if len(entries) != len(want) {
		t.Fatalf("len = %d, want %d", len(entries), len(want))
	}
	for i, id := range want {
		if entries[i].UserID != id || entries[i].Rank != i+1 {
			t.Errorf("entry %d = %s rank %d, want %s rank %d", i, entries[i].UserID, entries[i].Rank, id, i+1)
		}
	}
	if entries[0].DisplayName != "منى" || entries[1].Member != nil {
		t.Errorf("decoration wrong: %+v / %+v", entries[0], entries[1])
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct{ in, want int }{{0, 10}, {-1, 10}, {1, 1}, {50, 50}, {51, 50}}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGetUserStanding(t *testing.T) {
	store := newMemStore()
	store.ledgers = []ledgerRow{
		{userID: "a", total: 300},
		{userID: "b", total: 100},
		{userID: "c", total: 100},
		{userID: "d", total: 1},
	}
	svc := NewService(store, fakeContributions{}, nil, fixedCounter(2))
	ctx := context.Background()

	tests := []struct {
		user     string
		wantRank int64
		wantPts  int64
	}{
		{"a", 1, 300},
		{"b", 2, 100},
		{"c", 2, 100}, // ties share a rank
		{"d", 4, 1},
		{"new", 5, 0}, // no ledger yet
	}
	for _, tt := range tests {
		st, err := svc.GetUserStanding(ctx, tt.user)
		if err != nil {
			t.Fatal(err)
		}
		if st.Rank != tt.wantRank || st.TotalPoints != tt.wantPts {
			t.Errorf("%s: rank %d points %d, want %d %d", tt.user, st.Rank, st.TotalPoints, tt.wantRank, tt.wantPts)
		}
		if st.TotalUsers != 4 || st.AveragePoints != 125 || st.AchievementsCount != 2 {
			t.Errorf("%s: %+v", tt.user, st)
		}
	}
}

func TestGetUserStandingEmpty(t *testing.T) {
	svc := NewService(newMemStore(), fakeContributions{}, nil, nil)
	st, err := svc.GetUserStanding(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if st.Rank != 1 || st.TotalUsers != 0 || st.AveragePoints != 0 {
		t.Errorf("standing = %+v", st)
	}
}
