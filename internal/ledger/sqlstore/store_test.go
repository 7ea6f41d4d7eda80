package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/careerhub/careerhub/internal/config"
	"github.com/careerhub/careerhub/internal/db"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/ledger/ledgertest"
	"github.com/careerhub/careerhub/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_%d?mode=memory&cache=shared", time.Now().UnixNano())
	conn, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		t.Fatalf("sql db: %v", errDB)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestStoreSuite(t *testing.T) {
	ledgertest.RunStoreSuite(t, func(t *testing.T) ledger.Store {
		return New(openTestDB(t))
	})
}

// openPooledDB opens a file database through db.Open so the suite runs on
// the production connection pool and pragmas.
func openPooledDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, errOpen := db.Open(config.DatabaseConfig{DSN: "file:" + filepath.Join(t.TempDir(), "ledger.db")})
	if errOpen != nil {
		t.Fatalf("open: %v", errOpen)
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		t.Fatalf("sql db: %v", errDB)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if sqlDB.Stats().MaxOpenConnections <= 1 {
		t.Fatalf("expected a pooled connection, got max %d", sqlDB.Stats().MaxOpenConnections)
	}

	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestStoreSuitePooledFile(t *testing.T) {
	ledgertest.RunStoreSuite(t, func(t *testing.T) ledger.Store {
		return New(openPooledDB(t))
	})
}

func TestStoreHistoryIgnoresClockSteps(t *testing.T) {
	store := New(openTestDB(t))
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	store.now = func() time.Time {
		step++
		return base.Add(-time.Duration(step) * time.Minute)
	}
	for _, title := range []string{"first", "second", "third"} {
		if _, errRecord := ledger.Record(ctx, store, 3, title, 10); errRecord != nil {
			t.Fatalf("record %s: %v", title, errRecord)
		}
	}

	history, errHistory := store.History(ctx, 3)
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
	}
	if !history[0].CreatedAt.Before(history[2].CreatedAt) {
		t.Fatalf("expected the clock to have stepped back, got %v then %v", history[2].CreatedAt, history[0].CreatedAt)
	}
}

func TestStorePersistsAccountRow(t *testing.T) {
	conn := openTestDB(t)
	store := New(conn)
	ctx := context.Background()

	if _, errRecord := ledger.Record(ctx, store, 42, "가입 축하 토큰", 1000); errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	if _, errRecord := ledger.Record(ctx, store, 42, "이력서 첨삭 사용", -200); errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}

	var account models.TokenAccount
	if errFind := conn.Where("user_id = ?", 42).First(&account).Error; errFind != nil {
		t.Fatalf("find account: %v", errFind)
	}
	if account.Balance != 800 {
		t.Fatalf("expected persisted balance 800, got %d", account.Balance)
	}

	var count int64
	if errCount := conn.Model(&models.TokenTransaction{}).Where("user_id = ?", 42).Count(&count).Error; errCount != nil {
		t.Fatalf("count transactions: %v", errCount)
	}
	if count != 2 {
		t.Fatalf("expected 2 transactions, got %d", count)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	if _, errRecord := ledger.Record(ctx, New(conn), 5, "seed", 300); errRecord != nil {
		t.Fatalf("record: %v", errRecord)
	}
	reopened := New(conn)
	balance, errBalance := reopened.Balance(ctx, 5)
	if errBalance != nil {
		t.Fatalf("balance: %v", errBalance)
	}
	if balance != 300 {
		t.Fatalf("expected 300 after reopen, got %d", balance)
	}
}

func TestStoreUnavailableWrapsError(t *testing.T) {
	conn := openTestDB(t)
	store := New(conn)
	sqlDB, _ := conn.DB()
	_ = sqlDB.Close()

	_, errBalance := store.Balance(context.Background(), 1)
	if !errors.Is(errBalance, ledger.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", errBalance)
	}
	_, errRecord := ledger.Record(context.Background(), store, 1, "seed", 10)
	if !errors.Is(errRecord, ledger.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable on write, got %v", errRecord)
	}
}
