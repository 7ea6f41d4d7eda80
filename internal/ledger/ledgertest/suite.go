// Package ledgertest holds behaviour checks shared by every ledger.Store.
package ledgertest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/careerhub/careerhub/internal/ledger"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) ledger.Store

// RunStoreSuite runs the shared store checks against stores built by newStore.
func RunStoreSuite(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("UnknownUserIsEmpty", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		balance, errBalance := store.Balance(ctx, 404)
		if errBalance != nil {
			t.Fatalf("balance: %v", errBalance)
		}
		if balance != 0 {
			t.Fatalf("expected 0 balance, got %d", balance)
		}
		history, errHistory := store.History(ctx, 404)
		if errHistory != nil {
			t.Fatalf("history: %v", errHistory)
		}
		if history == nil || len(history) != 0 {
			t.Fatalf("expected empty non-nil history, got %#v", history)
		}
	})

	t.Run("BalanceEqualsHistorySum", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		const userID = 7

		amounts := []int64{1000, -200, 500, -150, -1150, 30}
		for _, amount := range amounts {
			if _, errRecord := ledger.Record(ctx, store, userID, "entry", amount); errRecord != nil {
				t.Fatalf("record %d: %v", amount, errRecord)
			}
		}
		// Would go negative and must be rejected.
		if _, errRecord := ledger.Record(ctx, store, userID, "overdraft", -31); !errors.Is(errRecord, ledger.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", errRecord)
		}

		AssertConsistent(t, store, userID)
		balance, _ := store.Balance(ctx, userID)
		if balance != 30 {
			t.Fatalf("expected balance 30, got %d", balance)
		}
	})

	t.Run("HistoryMostRecentFirstWithIncreasingIDs", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		const userID = 8

		titles := []string{"first", "second", "third"}
		for _, title := range titles {
			if _, errRecord := ledger.Record(ctx, store, userID, title, 10); errRecord != nil {
				t.Fatalf("record %s: %v", title, errRecord)
			}
		}
		history, errHistory := store.History(ctx, userID)
		if errHistory != nil {
			t.Fatalf("history: %v", errHistory)
		}
		if len(history) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(history))
		}
		for i, want := range []string{"third", "second", "first"} {
			if history[i].Title != want {
				t.Fatalf("entry %d: expected %q, got %q", i, want, history[i].Title)
			}
			if history[i].UserID != userID {
				t.Fatalf("entry %d: expected user %d, got %d", i, userID, history[i].UserID)
			}
		}
		if !(history[0].ID > history[1].ID && history[1].ID > history[2].ID) {
			t.Fatalf("expected ids increasing in creation order, got %d %d %d", history[2].ID, history[1].ID, history[0].ID)
		}

		again, _ := store.History(ctx, userID)
		again[0].Title = "mutated"
		fresh, _ := store.History(ctx, userID)
		if fresh[0].Title != "third" {
			t.Fatalf("history must be a fresh copy, got %q", fresh[0].Title)
		}
	})

	t.Run("FailedUpdateKeepsNothing", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		const userID = 9

		if _, errRecord := ledger.Record(ctx, store, userID, "seed", 100); errRecord != nil {
			t.Fatalf("seed: %v", errRecord)
		}
		boom := errors.New("boom")
		errUpdate := store.Update(ctx, userID, func(tx ledger.Tx) error {
			if _, errRecord := tx.Record("partial", -40); errRecord != nil {
				return errRecord
			}
			if tx.Balance() != 60 {
				t.Errorf("expected in-tx balance 60, got %d", tx.Balance())
			}
			return boom
		})
		if !errors.Is(errUpdate, boom) {
			t.Fatalf("expected boom, got %v", errUpdate)
		}

		balance, _ := store.Balance(ctx, userID)
		if balance != 100 {
			t.Fatalf("expected balance 100 after rollback, got %d", balance)
		}
		history, _ := store.History(ctx, userID)
		if len(history) != 1 {
			t.Fatalf("expected 1 entry after rollback, got %d", len(history))
		}
	})

	t.Run("RecordValidation", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if _, errRecord := ledger.Record(ctx, store, 10, "  ", 5); !errors.Is(errRecord, ledger.ErrInvalidTitle) {
			t.Fatalf("expected ErrInvalidTitle, got %v", errRecord)
		}
		if _, errRecord := ledger.Record(ctx, store, 10, "zero", 0); !errors.Is(errRecord, ledger.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", errRecord)
		}
		receipt, errRecord := ledger.Record(ctx, store, 10, "  padded  ", 5)
		if errRecord != nil {
			t.Fatalf("record: %v", errRecord)
		}
		if receipt.Transaction.Title != "padded" || receipt.NewBalance != 5 {
			t.Fatalf("unexpected receipt %#v", receipt)
		}
	})

	t.Run("UsersAreIsolated", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		if _, errRecord := ledger.Record(ctx, store, 1, "a", 100); errRecord != nil {
			t.Fatalf("record: %v", errRecord)
		}
		if _, errRecord := ledger.Record(ctx, store, 2, "b", 250); errRecord != nil {
			t.Fatalf("record: %v", errRecord)
		}
		b1, _ := store.Balance(ctx, 1)
		b2, _ := store.Balance(ctx, 2)
		if b1 != 100 || b2 != 250 {
			t.Fatalf("unexpected balances %d %d", b1, b2)
		}
		h1, _ := store.History(ctx, 1)
		if len(h1) != 1 || h1[0].Title != "a" {
			t.Fatalf("unexpected history for user 1: %#v", h1)
		}
	})

	t.Run("ConcurrentDebitsNeverOverdraw", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		const userID = 11

		if _, errRecord := ledger.Record(ctx, store, userID, "seed", 1000); errRecord != nil {
			t.Fatalf("seed: %v", errRecord)
		}

		const workers = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errRecord := ledger.Record(ctx, store, userID, "spend", -100)
				if errRecord == nil {
					mu.Lock()
					successes++
					mu.Unlock()
					return
				}
				if !errors.Is(errRecord, ledger.ErrInsufficientBalance) {
					t.Errorf("unexpected error: %v", errRecord)
				}
			}()
		}
		wg.Wait()

		if successes != 10 {
			t.Fatalf("expected 10 successful debits, got %d", successes)
		}
		AssertConsistent(t, store, userID)
		balance, _ := store.Balance(ctx, userID)
		if balance != 0 {
			t.Fatalf("expected balance 0, got %d", balance)
		}
	})

	t.Run("ConcurrentUsersStayIndependent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		const (
			users   = 8
			workers = 4
		)

		for userID := uint64(1); userID <= users; userID++ {
			if _, errRecord := ledger.Record(ctx, store, userID, "seed", 200); errRecord != nil {
				t.Fatalf("seed %d: %v", userID, errRecord)
			}
		}

		var wg sync.WaitGroup
		for userID := uint64(1); userID <= users; userID++ {
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(userID uint64) {
					defer wg.Done()
					_, errRecord := ledger.Record(ctx, store, userID, "spend", -100)
					if errRecord != nil && !errors.Is(errRecord, ledger.ErrInsufficientBalance) {
						t.Errorf("user %d: unexpected error: %v", userID, errRecord)
					}
				}(userID)
			}
		}
		wg.Wait()

		for userID := uint64(1); userID <= users; userID++ {
			AssertConsistent(t, store, userID)
			balance, _ := store.Balance(ctx, userID)
			if balance != 0 {
				t.Fatalf("user %d: expected balance 0, got %d", userID, balance)
			}
			history, _ := store.History(ctx, userID)
			if len(history) != 3 {
				t.Fatalf("user %d: expected seed and two spends, got %d entries", userID, len(history))
			}
		}
	})
}

// AssertConsistent fails the test when the user's balance differs from the
// sum of their history.
func AssertConsistent(t *testing.T, store ledger.Store, userID uint64) {
	t.Helper()
	ctx := context.Background()

	balance, errBalance := store.Balance(ctx, userID)
	if errBalance != nil {
		t.Fatalf("balance: %v", errBalance)
	}
	history, errHistory := store.History(ctx, userID)
	if errHistory != nil {
		t.Fatalf("history: %v", errHistory)
	}
	var sum int64
	for _, entry := range history {
		sum += entry.Amount
	}
	if sum != balance {
		t.Fatalf("balance %d != history sum %d", balance, sum)
	}
}
