// Package app wires the components together.
// app.go is the assembly point: it opens the database and Redis, builds the
// repositories, services and handlers, and hands them to the HTTP server
// and the scheduler.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/access"
	"bahth.org/engagement/internal/config"
	"bahth.org/engagement/internal/db/migrations"
	"bahth.org/engagement/internal/db/postgres"
	"bahth.org/engagement/internal/db/redisdb"
	"bahth.org/engagement/internal/features/achievements"
	"bahth.org/engagement/internal/features/contributions"
	"bahth.org/engagement/internal/features/members"
	"bahth.org/engagement/internal/features/notifications"
	"bahth.org/engagement/internal/features/points"
	"bahth.org/engagement/internal/features/ranking"
	"bahth.org/engagement/internal/jobs"
	"bahth.org/engagement/internal/server"
)

// App holds the running components.
type App struct {
	Server    *server.Server
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	Redis     *redis.Client // nil when REDIS_ADDR is empty
}

// New builds the application. Order matters, components depend on each other.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. Database ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool, migrations.All); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	// === 2. Redis (optional) ===
	var (
		redisClient *redis.Client
		locker      *redisdb.Locker
	)
	if cfg.RedisEnabled() {
		redisClient, err = redisdb.NewClient(ctx, cfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("redis connection: %w", err)
		}
		locker = redisdb.NewLocker(redisClient)
	} else {
		log.Info("REDIS_ADDR not set, catalog cache and job locks disabled")
	}

	// === 3. Repositories ===
	pointsRepo := points.NewRepository(pool)
	achievementRepo := achievements.NewRepository(pool)
	rankingRepo := ranking.NewRepository(pool)
	memberRepo := members.NewRepository(pool)
	contributionRepo := contributions.NewRepository(pool)
	notificationRepo := notifications.NewRepository(pool)

	// === 4. Services ===
	memberService := members.NewService(memberRepo)
	notificationService := notifications.NewService(notificationRepo, cfg.FeatureNotificationsEnabled)

	achievementOpts := []achievements.Option{achievements.WithNotifier(notificationService)}
	if redisClient != nil {
		achievementOpts = append(achievementOpts,
			achievements.WithCache(achievements.NewRedisCache(redisClient, cfg.CatalogCacheTTL)),
			achievements.WithLocker(locker),
		)
	}
	achievementService := achievements.NewService(achievementRepo, achievementOpts...)
	pointsService := points.NewService(pointsRepo, achievementService)
	rankingService := ranking.NewService(rankingRepo, contributionRepo, memberService, achievementService)

	seedCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := achievementService.SeedCatalog(seedCtx); err != nil {
		closeAll(pool, redisClient)
		return nil, fmt.Errorf("seed achievement catalog: %w", err)
	}

	// === 5. Handlers ===
	pointsHandler := points.NewHandler(pointsService)
	achievementHandler := achievements.NewHandler(achievementService)
	rankingHandler := ranking.NewHandler(rankingService)

	// === 6. HTTP server ===
	srv := server.New(cfg, pool, access.NewTokenVerifier(cfg.GatewayTokenHash),
		pointsHandler,
		achievementHandler,
		rankingHandler,
	)

	// === 7. Scheduler ===
	var jobLocker jobs.Locker
	if locker != nil {
		jobLocker = locker
	}
	scheduler := jobs.NewScheduler(cfg, rankingService, pointsService, jobLocker)

	return &App{
		Server:    srv,
		Scheduler: scheduler,
		DB:        pool,
		Redis:     redisClient,
	}, nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	closeAll(a.DB, a.Redis)
}

func closeAll(pool *pgxpool.Pool, client *redis.Client) {
	if client != nil {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("failed to close Redis client")
		}
	}
	pool.Close()
}
