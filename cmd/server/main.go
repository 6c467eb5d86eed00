// Package main is the engagement service entry point.
// It loads configuration, builds the application and serves HTTP until
// SIGINT/SIGTERM, then shuts down gracefully.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/app"
	"bahth.org/engagement/internal/config"
)

const shutdownTimeout = 15 * time.Second

func main() {
	setupLogging()

	log.Info("=== engagement service starting ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err == nil {
		log.SetLevel(level)
	}
	if cfg.AppEnv == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialise application")
	}
	defer application.Close()

	if err := application.Scheduler.Start(ctx); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer application.Scheduler.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- application.Server.Start()
	}()

	log.Info("=== engagement service ready ===")

	select {
	case sig := <-quit:
		log.Infof("received %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("HTTP server stopped")
		}
	}

	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown incomplete")
	}

	log.Info("=== engagement service stopped ===")
}

func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
