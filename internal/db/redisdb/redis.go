// Package redisdb manages the optional Redis connection.
// Redis backs the achievement catalog cache and the locks that keep
// catalog seeding and scheduled sweeps to one replica at a time.
package redisdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/config"
)

// ErrLockBusy: another replica holds the lock and the caller chose not to wait.
var ErrLockBusy = errors.New("lock is held elsewhere")

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	log.WithField("addr", cfg.RedisAddr).Info("connected to Redis")
	return client, nil
}

// Locker runs functions under a Redis lock.
type Locker struct {
	locks *redislock.Client
}

// NewLocker creates a Locker over client.
func NewLocker(client redis.UniversalClient) *Locker {
	return &Locker{locks: redislock.New(client)}
}

// WithLock obtains key for ttl, runs fn and releases the lock.
// When wait is false and the lock is taken, WithLock returns ErrLockBusy
// without calling fn. When wait is true it retries until ctx is done.
func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, wait bool, fn func(ctx context.Context) error) error {
	opts := &redislock.Options{}
	if wait {
		opts.RetryStrategy = redislock.LinearBackoff(200 * time.Millisecond)
	}

	lock, err := l.locks.Obtain(ctx, key, ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrLockBusy
	}
	if err != nil {
		return fmt.Errorf("obtain lock %s: %w", key, err)
	}
	defer func() {
		// Release on a fresh context, ctx may already be cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.WithError(err).WithField("key", key).Warn("failed to release lock")
		}
	}()

	return fn(ctx)
}
