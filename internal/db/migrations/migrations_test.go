package migrations

import (
	"strings"
	"testing"
)

func TestMigrationsOrdered(t *testing.T) {
	seen := make(map[int]bool)
	for i, m := range All {
		if m.Version != i+1 {
			t.Errorf("migration %d has version %d, want %d", i, m.Version, i+1)
		}
		if seen[m.Version] {
			t.Errorf("duplicate version %d", m.Version)
		}
		seen[m.Version] = true
		if strings.TrimSpace(m.SQL) == "" || m.Name == "" {
			t.Errorf("migration %d is empty or unnamed", m.Version)
		}
	}
}

func TestAchievementThresholdPositive(t *testing.T) {
	if !strings.Contains(migration003Achievements, "CHECK (threshold > 0)") {
		t.Error("achievements.threshold must be constrained positive")
	}
}

func TestMigrationsCreateOwnedTables(t *testing.T) {
	var all strings.Builder
	for _, m := range All {
		all.WriteString(m.SQL)
	}
	for _, table := range []string{
		"point_ledgers", "point_events", "achievements", "user_achievements", "researcher_profiles",
	} {
		if !strings.Contains(all.String(), "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("no migration creates %s", table)
		}
	}
}
