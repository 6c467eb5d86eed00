package notifications

import (
	"context"
	"errors"
	"testing"

	"bahth.org/engagement/internal/common"
)

type memStore struct {
	rows []Notification
	err  error
}

func (m *memStore) Insert(ctx context.Context, n *Notification) error {
	if m.err != nil {
		return m.err
	}
	m.rows = append(m.rows, *n)
	return nil
}

func TestAchievementUnlocked(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, true)

	if err := svc.AchievementUnlocked(context.Background(), "u1", "a-1", "الباحث المبتدئ", "🌟", 50); err != nil {
		t.Fatal(err)
	}
	if len(store.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(store.rows))
	}
	n := store.rows[0]
	if n.ID == "" || n.CreatedAt.IsZero() {
		t.Error("id or created_at not filled")
	}
	if n.Type != TypeAchievementUnlocked || n.IsRead {
		t.Errorf("type %s read %v", n.Type, n.IsRead)
	}
	if *n.EntityID != "a-1" || *n.EntityType != "achievement" {
		t.Errorf("entity = %s/%s", *n.EntityID, *n.EntityType)
	}
	want := "مبروك! حصلت على إنجاز «الباحث المبتدئ» بعد جمع 50 نقطة"
	if n.Message != want {
		t.Errorf("message = %q, want %q", n.Message, want)
	}
}

func TestNotifyDisabled(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, false)
	if err := svc.Notify(context.Background(), Notification{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	if len(store.rows) != 0 {
		t.Error("disabled service stored a notification")
	}
}

func TestNotifyErrors(t *testing.T) {
	svc := NewService(&memStore{}, true)
	if err := svc.Notify(context.Background(), Notification{}); !errors.Is(err, common.ErrInvalidUser) {
		t.Errorf("empty user error = %v", err)
	}

	failing := NewService(&memStore{err: common.Storage("insert notification", errors.New("down"))}, true)
	if err := failing.Notify(context.Background(), Notification{UserID: "u1"}); !errors.Is(err, common.ErrStorage) {
		t.Errorf("storage error = %v", err)
	}
}
