// Package achievements: service.go evaluates a user's total against the catalog
// and unlocks whatever was crossed.
package achievements

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/common"
	"bahth.org/engagement/internal/metrics"
)

// Store is the persistence the evaluator needs. *Repository implements it.
type Store interface {
	ListCatalog(ctx context.Context) ([]Achievement, error)
	UnlockedIDs(ctx context.Context, userID string) (map[string]struct{}, error)
	Unlock(ctx context.Context, userID, achievementID string, at time.Time) (bool, error)
	ListUnlocked(ctx context.Context, userID string) ([]UserAchievement, error)
	CountUnlocked(ctx context.Context, userID string) (int, error)
	Insert(ctx context.Context, a *Achievement) (bool, error)
}

// Cache holds the catalog between requests. *RedisCache implements it.
type Cache interface {
	Get(ctx context.Context) ([]Achievement, bool, error)
	Set(ctx context.Context, catalog []Achievement) error
	Invalidate(ctx context.Context) error
}

// Notifier tells a user about a fresh unlock.
type Notifier interface {
	AchievementUnlocked(ctx context.Context, userID, achievementID, title, icon string, threshold int64) error
}

// Locker serialises catalog seeding across replicas. redisdb.Locker implements it.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, wait bool, fn func(ctx context.Context) error) error
}

const seedLockKey = "engagement:lock:catalog-seed"

// Service manages the catalog and unlocks.
type Service struct {
	store    Store
	cache    Cache
	notifier Notifier
	locker   Locker
	now      func() time.Time
}

// Option configures optional collaborators of Service.
type Option func(*Service)

// WithCache puts a catalog cache in front of the store.
func WithCache(c Cache) Option { return func(s *Service) { s.cache = c } }

// WithNotifier sends a notification on every unlock.
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

// WithLocker guards SeedCatalog with a distributed lock.
func WithLocker(l Locker) Option { return func(s *Service) { s.locker = l } }

// NewService creates the achievements service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Eligible returns the catalog entries reachable at total that are not in
// unlocked, ordered by ascending threshold and then code.
func Eligible(catalog []Achievement, unlocked map[string]struct{}, total int64) []Achievement {
	var out []Achievement
	for _, a := range catalog {
		if a.Threshold > total {
			continue
		}
		if _, ok := unlocked[a.ID]; ok {
			continue
		}
		out = append(out, a)
	}
	sortCatalog(out)
	return out
}

func sortCatalog(list []Achievement) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Threshold != list[j].Threshold {
			return list[i].Threshold < list[j].Threshold
		}
		return list[i].Code < list[j].Code
	})
}

// Evaluate unlocks every achievement whose threshold total has reached and
// returns the ones this call unlocked. Running it again is a no-op.
// Notification failures are logged and do not fail the evaluation.
func (s *Service) Evaluate(ctx context.Context, userID string, total int64) ([]Achievement, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.store.UnlockedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var newly []Achievement
	now := s.now().UTC()
	for _, a := range Eligible(catalog, unlocked, total) {
		inserted, err := s.store.Unlock(ctx, userID, a.ID, now)
		if err != nil {
			return newly, fmt.Errorf("unlock %s: %w", a.Code, err)
		}
		if !inserted {
			continue
		}
		newly = append(newly, a)
		metrics.AchievementsUnlocked.Inc()

		log.WithFields(log.Fields{
			"user_id":     userID,
			"achievement": a.Code,
			"threshold":   a.Threshold,
			"total":       total,
		}).Info("achievement unlocked")

		if s.notifier != nil {
			if err := s.notifier.AchievementUnlocked(ctx, userID, a.ID, a.Title, a.Icon, a.Threshold); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"user_id":     userID,
					"achievement": a.Code,
				}).Warn("failed to notify about achievement")
			}
		}
	}
	return newly, nil
}

// Catalog returns the full catalog, from cache when possible.
func (s *Service) Catalog(ctx context.Context) ([]Achievement, error) {
	if s.cache != nil {
		catalog, ok, err := s.cache.Get(ctx)
		if err != nil {
			log.WithError(err).Warn("catalog cache read failed, using database")
		}
		if ok {
			return catalog, nil
		}
	}

	catalog, err := s.store.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	sortCatalog(catalog)

	if s.cache != nil {
		if err := s.cache.Set(ctx, catalog); err != nil {
			log.WithError(err).Warn("catalog cache write failed")
		}
	}
	return catalog, nil
}

// UserAchievements lists userID's unlocks, newest first.
func (s *Service) UserAchievements(ctx context.Context, userID string) ([]UserAchievement, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.ErrInvalidUser
	}
	return s.store.ListUnlocked(ctx, userID)
}

// CountUnlocked returns how many achievements userID holds.
func (s *Service) CountUnlocked(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnlocked(ctx, userID)
}

// AddAchievement adds a catalog entry. Users who already passed its
// threshold receive it on their next evaluation.
func (s *Service) AddAchievement(ctx context.Context, a Achievement) (*Achievement, error) {
	if strings.TrimSpace(a.Code) == "" || strings.TrimSpace(a.Title) == "" {
		return nil, fmt.Errorf("%w: code and title are required", common.ErrInvalidArgument)
	}
	if a.Threshold <= 0 {
		return nil, fmt.Errorf("%w: threshold must be positive", common.ErrInvalidArgument)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}

	inserted, err := s.store.Insert(ctx, &a)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, fmt.Errorf("%w: code %q already exists", common.ErrInvalidArgument, a.Code)
	}
	s.invalidate(ctx)
	return &a, nil
}

// SeedCatalog inserts the default entries whose codes are missing.
// With a locker only one replica seeds at a time, the others wait.
func (s *Service) SeedCatalog(ctx context.Context) error {
	seed := func(ctx context.Context) error {
		added := 0
		for _, def := range DefaultCatalog {
			a := def
			a.CreatedAt = s.now().UTC()
			inserted, err := s.store.Insert(ctx, &a)
			if err != nil {
				return fmt.Errorf("seed %s: %w", a.Code, err)
			}
			if inserted {
				added++
			}
		}
		s.invalidate(ctx)
		log.WithField("added", added).Info("achievement catalog seeded")
		return nil
	}

	if s.locker == nil {
		return seed(ctx)
	}
	return s.locker.WithLock(ctx, seedLockKey, 30*time.Second, true, seed)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("catalog cache invalidation failed")
	}
}
