// Package notifications: service.go builds the Arabic notification texts.
package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/common"
)

// Store persists notifications. *Repository implements it.
type Store interface {
	Insert(ctx context.Context, n *Notification) error
}

// Service creates notifications.
type Service struct {
	store   Store
	enabled bool
	now     func() time.Time
}

// NewService creates the notifications service. A disabled service
// accepts every call and writes nothing.
func NewService(store Store, enabled bool) *Service {
	return &Service{store: store, enabled: enabled, now: time.Now}
}

// Notify fills the id and timestamp of n and stores it.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	if !s.enabled {
		return nil
	}
	if strings.TrimSpace(n.UserID) == "" {
		return common.ErrInvalidUser
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	if err := s.store.Insert(ctx, &n); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"user_id": n.UserID,
		"type":    n.Type,
	}).Debug("notification stored")
	return nil
}

// AchievementUnlocked tells userID they earned an achievement.
func (s *Service) AchievementUnlocked(ctx context.Context, userID, achievementID, title, icon string, threshold int64) error {
	entityType := "achievement"
	return s.Notify(ctx, Notification{
		UserID:     userID,
		Type:       TypeAchievementUnlocked,
		Title:      "إنجاز جديد " + icon,
		Message:    AchievementMessage(title, threshold),
		EntityID:   &achievementID,
		EntityType: &entityType,
	})
}

// AchievementMessage renders the unlock text.
//
//	AchievementMessage("الباحث المبتدئ", 50) → "مبروك! حصلت على إنجاز «الباحث المبتدئ» بعد جمع 50 نقطة"
func AchievementMessage(title string, threshold int64) string {
	return fmt.Sprintf("مبروك! حصلت على إنجاز «%s» بعد جمع %s", title, common.FormatPoints(threshold))
}
