package points

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bahth.org/engagement/internal/common"
	"bahth.org/engagement/internal/db/postgres/pgtest"
)

func creditEvent(userID string, action Action) *Event {
	return &Event{
		UserID:    userID,
		Points:    action.Points(),
		Action:    action,
		Reason:    action.Reason(),
		CreatedAt: time.Now().UTC(),
	}
}

func TestRepositoryConcurrentCreditsAreNotLost(t *testing.T) {
	repo := NewRepository(pgtest.Pool(t))
	ctx := context.Background()

	const workers = 50
	actions := []Action{ActionPublishPaper, ActionReviewPaper, ActionReceiveLike, ActionMakeComment}

	var want int64
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		action := actions[i%len(actions)]
		want += action.Points()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Credit(ctx, creditEvent("u1", action)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Credit: %v", err)
	}

	total, err := repo.GetTotal(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if total != want {
		t.Errorf("total = %d, want %d", total, want)
	}

	history, err := repo.GetHistory(ctx, "u1", workers+10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != workers {
		t.Fatalf("history has %d events, want %d", len(history), workers)
	}
	var sum int64
	for _, ev := range history {
		sum += ev.Points
	}
	if sum != total {
		t.Errorf("sum of events = %d, total = %d", sum, total)
	}

	ledgers, err := repo.ListLedgers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ledgers) != 1 {
		t.Errorf("%d ledgers for one user, want 1", len(ledgers))
	}
}

func TestRepositoryCreditRollsBackOnEventFailure(t *testing.T) {
	repo := NewRepository(pgtest.Pool(t))
	ctx := context.Background()

	if _, err := repo.Credit(ctx, creditEvent("u1", ActionPublishPaper)); err != nil {
		t.Fatal(err)
	}

	// PostgreSQL text cannot hold NUL, so the event insert fails after the
	// ledger upsert already ran inside the transaction.
	bad := creditEvent("u1", ActionReviewPaper)
	bad.Reason = "broken\x00reason"
	_, err := repo.Credit(ctx, bad)
	if !errors.Is(err, common.ErrStorage) {
		t.Fatalf("Credit error = %v, want ErrStorage", err)
	}

	total, err := repo.GetTotal(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if total != ActionPublishPaper.Points() {
		t.Errorf("total = %d after failed credit, want %d", total, ActionPublishPaper.Points())
	}
	history, err := repo.GetHistory(ctx, "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("history has %d events, want 1", len(history))
	}

	// A first credit that fails leaves no ledger behind.
	bad = creditEvent("u2", ActionPublishPaper)
	bad.Reason = "\x00"
	if _, err := repo.Credit(ctx, bad); err == nil {
		t.Fatal("Credit accepted a NUL reason")
	}
	if _, err := repo.GetLedger(ctx, "u2"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetLedger(u2) error = %v, want ErrNotFound", err)
	}
}

func TestRepositoryReadsDoNotCreateLedgers(t *testing.T) {
	repo := NewRepository(pgtest.Pool(t))
	ctx := context.Background()

	total, err := repo.GetTotal(ctx, "ghost")
	if err != nil || total != 0 {
		t.Fatalf("GetTotal(ghost) = %d, %v", total, err)
	}
	if _, err := repo.GetLedger(ctx, "ghost"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetLedger(ghost) error = %v, want ErrNotFound", err)
	}
	ledgers, err := repo.ListLedgers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ledgers) != 0 {
		t.Errorf("reads created %d ledgers", len(ledgers))
	}
}
