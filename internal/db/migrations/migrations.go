// Package migrations holds the schema, embedded in code so the binary
// deploys alone. Migrations apply in order and are never edited once released.
package migrations

import "bahth.org/engagement/internal/db/postgres"

// All lists every migration in the order it applies.
var All = []postgres.Migration{
	{Version: 1, Name: "platform_tables", SQL: migration001Platform},
	{Version: 2, Name: "point_ledgers", SQL: migration002Ledgers},
	{Version: 3, Name: "achievements", SQL: migration003Achievements},
	{Version: 4, Name: "researcher_profiles", SQL: migration004Profiles},
}

// Tables owned by the platform. Created only when missing so a fresh
// database works; the platform's own schema wins when it exists.
var migration001Platform = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT UNIQUE,
    name TEXT,
    avatar TEXT,
    institution TEXT,
    verified BOOLEAN NOT NULL DEFAULT FALSE,
    role TEXT NOT NULL DEFAULT 'RESEARCHER',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS papers (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'DRAFT',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS paper_authors (
    paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    PRIMARY KEY (paper_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_paper_authors_user ON paper_authors(user_id);
CREATE TABLE IF NOT EXISTS reviews (
    id TEXT PRIMARY KEY,
    paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
    reviewer_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reviews_reviewer ON reviews(reviewer_id);
CREATE INDEX IF NOT EXISTS idx_reviews_paper ON reviews(paper_id);
CREATE TABLE IF NOT EXISTS likes (
    paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (paper_id, user_id)
);
CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY,
    user_id TEXT NOT NULL,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    entity_id TEXT,
    entity_type TEXT,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
`

var migration002Ledgers = `
CREATE TABLE IF NOT EXISTS point_ledgers (
    id BIGSERIAL PRIMARY KEY,
    user_id TEXT UNIQUE NOT NULL,
    total_points BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_point_ledgers_rank
    ON point_ledgers(total_points DESC, created_at ASC, user_id ASC);
CREATE TABLE IF NOT EXISTS point_events (
    id BIGSERIAL PRIMARY KEY,
    ledger_id BIGINT NOT NULL REFERENCES point_ledgers(id),
    user_id TEXT NOT NULL,
    points BIGINT NOT NULL,
    action TEXT NOT NULL,
    reason TEXT NOT NULL,
    entity_id TEXT,
    entity_type TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_point_events_history
    ON point_events(user_id, created_at DESC, id DESC);
`

var migration003Achievements = `
CREATE TABLE IF NOT EXISTS achievements (
    id TEXT PRIMARY KEY,
    code TEXT UNIQUE NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    threshold BIGINT NOT NULL CHECK (threshold > 0),
    icon TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT 'general',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_achievements (
    user_id TEXT NOT NULL,
    achievement_id TEXT NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
    unlocked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (user_id, achievement_id)
);
CREATE INDEX IF NOT EXISTS idx_user_achievements_user
    ON user_achievements(user_id, unlocked_at DESC);
`

var migration004Profiles = `
CREATE TABLE IF NOT EXISTS researcher_profiles (
    user_id TEXT PRIMARY KEY,
    total_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    papers_count BIGINT NOT NULL DEFAULT 0,
    reviews_count BIGINT NOT NULL DEFAULT 0,
    likes_received BIGINT NOT NULL DEFAULT 0,
    avg_review_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_researcher_profiles_score
    ON researcher_profiles(total_score DESC, user_id ASC);
`
