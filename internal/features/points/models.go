// Package points keeps each user's point ledger and its append-only event history.
// models.go describes the ledger, the events and the action table.
package points

import (
	"strings"
	"time"

	"bahth.org/engagement/internal/features/achievements"
)

// Action is a platform activity that earns points.
type Action string

const (
	ActionPublishPaper          Action = "PUBLISH_PAPER"
	ActionReviewPaper           Action = "REVIEW_PAPER"
	ActionReceivePositiveReview Action = "RECEIVE_POSITIVE_REVIEW"
	ActionReceiveLike           Action = "RECEIVE_LIKE"
	ActionMakeComment           Action = "MAKE_COMMENT"
	ActionBookmarkPaper         Action = "BOOKMARK_PAPER"
)

type actionRule struct {
	points int64
	reason string // Arabic, stored on the event
}

var actionRules = map[Action]actionRule{
	ActionPublishPaper:          {points: 50, reason: "نشر ورقة علمية"},
	ActionReviewPaper:           {points: 30, reason: "مراجعة ورقة علمية"},
	ActionReceivePositiveReview: {points: 20, reason: "تلقي مراجعة إيجابية"},
	ActionReceiveLike:           {points: 1, reason: "تلقي إعجاب"},
	ActionMakeComment:           {points: 5, reason: "إضافة تعليق"},
	ActionBookmarkPaper:         {points: 2, reason: "حفظ ورقة"},
}

// ParseAction maps s to a known action, case-insensitively.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := actionRules[a]
	return a, ok
}

// Points returns the fixed value of a. Unknown actions are worth 0.
func (a Action) Points() int64 { return actionRules[a].points }

// Reason returns the Arabic description of a.
func (a Action) Reason() string { return actionRules[a].reason }

// Actions lists the known actions with their values, highest first.
func Actions() []ActionInfo {
	order := []Action{
		ActionPublishPaper, ActionReviewPaper, ActionReceivePositiveReview,
		ActionMakeComment, ActionBookmarkPaper, ActionReceiveLike,
	}
	out := make([]ActionInfo, 0, len(order))
	for _, a := range order {
		out = append(out, ActionInfo{Action: a, Points: a.Points(), Reason: a.Reason()})
	}
	return out
}

// ActionInfo describes one action for the API.
type ActionInfo struct {
	Action Action `json:"action"`
	Points int64  `json:"points"`
	Reason string `json:"reason"`
}

// Ledger is a user's running total. One row per user, created by the first credit.
type Ledger struct {
	ID          int64     `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	TotalPoints int64     `db:"total_points" json:"totalPoints"` // sum of all event points
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Event is one credit. Events are never updated or deleted.
type Event struct {
	ID         int64     `db:"id" json:"id"`
	LedgerID   int64     `db:"ledger_id" json:"ledgerId"`
	UserID     string    `db:"user_id" json:"userId"`
	Points     int64     `db:"points" json:"points"`
	Action     Action    `db:"action" json:"action"`
	Reason     string    `db:"reason" json:"reason"`
	EntityID   *string   `db:"entity_id" json:"entityId,omitempty"`     // e.g. the paper id
	EntityType *string   `db:"entity_type" json:"entityType,omitempty"` // e.g. "paper"
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// CreditRequest is the input of Credit.
type CreditRequest struct {
	UserID     string `json:"userId" binding:"required"`
	Action     string `json:"action" binding:"required"`
	EntityID   string `json:"entityId,omitempty"`
	EntityType string `json:"entityType,omitempty"`
}

// CreditResult is what Credit committed, plus the achievements it unlocked.
type CreditResult struct {
	Ledger   *Ledger                    `json:"ledger"`
	Event    *Event                     `json:"event"`
	Unlocked []achievements.Achievement `json:"unlockedAchievements"`
}
