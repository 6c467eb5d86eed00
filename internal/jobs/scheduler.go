// Package jobs runs the background sweeps on cron schedules:
// the nightly researcher score recompute and the hourly achievement sweep.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/config"
	"bahth.org/engagement/internal/db/redisdb"
)

// Lock keys and TTLs. The TTL bounds how long a crashed replica blocks the others.
const (
	recomputeLockKey = "engagement:lock:recompute"
	sweepLockKey     = "engagement:lock:achievement-sweep"
	jobLockTTL       = 30 * time.Minute
)

// Recomputer rebuilds researcher profiles. *ranking.Service implements it.
type Recomputer interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// Sweeper re-evaluates achievements for every ledger. *points.Service implements it.
type Sweeper interface {
	ReevaluateAll(ctx context.Context) (int, error)
}

// Locker keeps a job to one replica. redisdb.Locker implements it.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, wait bool, fn func(ctx context.Context) error) error
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron       *cron.Cron
	cfg        *config.Config
	recomputer Recomputer
	sweeper    Sweeper
	locker     Locker
}

// NewScheduler creates a scheduler in the configured timezone. locker may be nil.
func NewScheduler(cfg *config.Config, recomputer Recomputer, sweeper Sweeper, locker Locker) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(cfg.Location())),
		cfg:        cfg,
		recomputer: recomputer,
		sweeper:    sweeper,
		locker:     locker,
	}
}

// Start registers the jobs and starts the runner.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.FeatureSweepsEnabled {
		log.Info("background sweeps disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.RecomputeSchedule, func() {
		s.run(ctx, "recompute", recomputeLockKey, s.recomputer.RecomputeAll)
	}); err != nil {
		return fmt.Errorf("schedule recompute: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.AchievementSweepSchedule, func() {
		s.run(ctx, "achievement_sweep", sweepLockKey, s.sweeper.ReevaluateAll)
	}); err != nil {
		return fmt.Errorf("schedule achievement sweep: %w", err)
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"timezone":  s.cfg.AppTimezone,
		"recompute": s.cfg.RecomputeSchedule,
		"sweep":     s.cfg.AchievementSweepSchedule,
	}).Info("scheduler started")
	return nil
}

// Stop stops the runner and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("scheduler stopped")
}

// run executes job under the lock. A busy lock means another replica is
// already running it and the tick is skipped.
func (s *Scheduler) run(ctx context.Context, name, lockKey string, job func(ctx context.Context) (int, error)) {
	entry := log.WithFields(log.Fields{"component": "cron", "job": name})
	start := time.Now()

	var processed int
	body := func(ctx context.Context) error {
		n, err := job(ctx)
		processed = n
		return err
	}

	var err error
	if s.locker != nil {
		err = s.locker.WithLock(ctx, lockKey, jobLockTTL, false, body)
	} else {
		err = body(ctx)
	}

	switch {
	case errors.Is(err, redisdb.ErrLockBusy):
		entry.Debug("job running on another replica, skipped")
	case err != nil:
		entry.WithError(err).WithField("processed", processed).Error("job finished with errors")
	default:
		entry.WithFields(log.Fields{
			"processed": processed,
			"took":      time.Since(start).String(),
		}).Info("job finished")
	}
}
