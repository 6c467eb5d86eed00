// Package pgtest gives repository tests a migrated PostgreSQL pool.
//
// Tests run only when TEST_DATABASE_URL is set and are skipped otherwise.
// Each pool lives in its own throwaway schema, so packages may run their
// tests against one database in parallel.
package pgtest

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bahth.org/engagement/internal/db/migrations"
	"bahth.org/engagement/internal/db/postgres"
)

// EnvDatabaseURL names the variable holding the test database DSN.
const EnvDatabaseURL = "TEST_DATABASE_URL"

// Pool returns a pool bound to a fresh schema with every migration applied.
// The schema is dropped when the test ends.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvDatabaseURL)
	if dsn == "" {
		t.Skipf("%s not set, skipping PostgreSQL test", EnvDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	exec(t, ctx, dsn, "CREATE SCHEMA "+schema)

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse %s: %v", EnvDatabaseURL, err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		dropCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
		defer stop()
		exec(t, dropCtx, dsn, "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
	})

	if err := postgres.RunMigrations(ctx, pool, migrations.All); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func exec(t *testing.T, ctx context.Context, dsn, sql string) {
	t.Helper()
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close(ctx)
	if _, err := conn.Exec(ctx, sql); err != nil {
		t.Fatalf("%s: %v", sql, err)
	}
}
