// Package points: service.go validates credits, applies them and hands the
// new total to the achievement evaluator.
package points

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"bahth.org/engagement/internal/common"
	"bahth.org/engagement/internal/features/achievements"
	"bahth.org/engagement/internal/metrics"
)

// History limits.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Store is the ledger persistence. *Repository implements it.
type Store interface {
	Credit(ctx context.Context, ev *Event) (*Ledger, error)
	GetTotal(ctx context.Context, userID string) (int64, error)
	GetLedger(ctx context.Context, userID string) (*Ledger, error)
	GetHistory(ctx context.Context, userID string, limit int) ([]*Event, error)
	ListLedgers(ctx context.Context) ([]*Ledger, error)
}

// Evaluator unlocks achievements for a new total. *achievements.Service implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, userID string, total int64) ([]achievements.Achievement, error)
}

// Service manages point ledgers.
type Service struct {
	store     Store
	evaluator Evaluator
	now       func() time.Time
}

// NewService creates the points service. evaluator may be nil.
func NewService(store Store, evaluator Evaluator) *Service {
	return &Service{store: store, evaluator: evaluator, now: time.Now}
}

// Credit records one action for a user and returns the new total, the
// appended event and any achievements it unlocked.
//
// The ledger update and the event commit atomically. The evaluator runs
// after the commit, its failure is logged and the credit still succeeds.
func (s *Service) Credit(ctx context.Context, req CreditRequest) (*CreditResult, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, common.ErrInvalidUser
	}
	action, ok := ParseAction(req.Action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidAction, req.Action)
	}

	ev := &Event{
		UserID:     userID,
		Points:     action.Points(),
		Action:     action,
		Reason:     action.Reason(),
		EntityID:   optional(req.EntityID),
		EntityType: optional(req.EntityType),
		CreatedAt:  s.now().UTC(),
	}

	ledger, err := s.store.Credit(ctx, ev)
	if err != nil {
		metrics.CreditFailures.Inc()
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"action":  action,
		}).Error("credit failed")
		return nil, err
	}
	metrics.PointsCredited.WithLabelValues(string(action)).Add(float64(ev.Points))

	log.WithFields(log.Fields{
		"user_id": userID,
		"action":  action,
		"points":  ev.Points,
		"total":   ledger.TotalPoints,
	}).Info("points credited")

	result := &CreditResult{Ledger: ledger, Event: ev, Unlocked: []achievements.Achievement{}}
	if s.evaluator == nil {
		return result, nil
	}

	unlocked, err := s.evaluator.Evaluate(ctx, userID, ledger.TotalPoints)
	if len(unlocked) > 0 {
		result.Unlocked = unlocked
	}
	if err != nil {
		metrics.EvaluationFailures.Inc()
		log.WithError(err).WithFields(log.Fields{
			"user_id": userID,
			"total":   ledger.TotalPoints,
		}).Warn("achievement evaluation failed, credit kept")
	}
	return result, nil
}

// GetTotal returns userID's total, 0 when the user was never credited.
func (s *Service) GetTotal(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, common.ErrInvalidUser
	}
	return s.store.GetTotal(ctx, userID)
}

// GetLedger returns userID's ledger or common.ErrNotFound.
func (s *Service) GetLedger(ctx context.Context, userID string) (*Ledger, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.ErrInvalidUser
	}
	return s.store.GetLedger(ctx, userID)
}

// GetHistory returns userID's newest events first. limit is clamped to
// 1..MaxHistoryLimit, 0 means DefaultHistoryLimit.
func (s *Service) GetHistory(ctx context.Context, userID string, limit int) ([]*Event, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, common.ErrInvalidUser
	}
	return s.store.GetHistory(ctx, userID, ClampHistoryLimit(limit))
}

// ClampHistoryLimit normalises a requested history size.
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return limit
}

// UserIDs returns every user that owns a ledger.
func (s *Service) UserIDs(ctx context.Context) ([]string, error) {
	ledgers, err := s.store.ListLedgers(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(ledgers))
	for _, l := range ledgers {
		ids = append(ids, l.UserID)
	}
	return ids, nil
}

// ReevaluateAll runs the evaluator for every ledger so catalog additions
// reach users who earn no new points. Returns how many achievements unlocked.
// One user's failure does not stop the sweep.
func (s *Service) ReevaluateAll(ctx context.Context) (int, error) {
	if s.evaluator == nil {
		return 0, nil
	}
	ledgers, err := s.store.ListLedgers(ctx)
	if err != nil {
		return 0, err
	}

	unlocked := 0
	var errs []error
	for _, l := range ledgers {
		if err := ctx.Err(); err != nil {
			return unlocked, err
		}
		got, err := s.evaluator.Evaluate(ctx, l.UserID, l.TotalPoints)
		unlocked += len(got)
		if err != nil {
			metrics.EvaluationFailures.Inc()
			errs = append(errs, fmt.Errorf("user %s: %w", l.UserID, err))
		}
	}
	return unlocked, errors.Join(errs...)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
