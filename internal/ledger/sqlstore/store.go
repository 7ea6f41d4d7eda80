// Package sqlstore is the durable ledger store backed by gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/careerhub/careerhub/internal/db"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists balances in token_accounts and history in token_transactions.
type Store struct {
	db    *gorm.DB
	locks *ledger.UserLocks
	now   func() time.Time
}

// New constructs a Store on an already migrated connection.
func New(conn *gorm.DB) *Store {
	return &Store{
		db:    conn,
		locks: ledger.NewUserLocks(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Balance implements ledger.Store.
func (s *Store) Balance(ctx context.Context, userID uint64) (int64, error) {
	var balance int64
	errRead := s.read(ctx, func() error {
		var account models.TokenAccount
		errFind := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
		if errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				balance = 0
				return nil
			}
			return errFind
		}
		balance = account.Balance
		return nil
	})
	if errRead != nil {
		return 0, errRead
	}
	return balance, nil
}

// History implements ledger.Store.
func (s *Store) History(ctx context.Context, userID uint64) ([]ledger.Transaction, error) {
	var rows []models.TokenTransaction
	errRead := s.read(ctx, func() error {
		rows = rows[:0]
		return s.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("id DESC").
			Find(&rows).Error
	})
	if errRead != nil {
		return nil, errRead
	}
	out := make([]ledger.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, toTransaction(&rows[i]))
	}
	return out, nil
}

// Update implements ledger.Store. The account row is created on demand and
// locked for the duration of the database transaction.
func (s *Store) Update(ctx context.Context, userID uint64, fn func(tx ledger.Tx) error) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	var errFn error
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.TokenAccount{UserID: userID}
		if errCreate := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; errCreate != nil {
			return fmt.Errorf("create account: %w", errCreate)
		}

		query := tx
		if !db.IsSQLite(tx) {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var account models.TokenAccount
		if errFind := query.Where("user_id = ?", userID).First(&account).Error; errFind != nil {
			return fmt.Errorf("lock account: %w", errFind)
		}

		stx := &sqlTx{db: tx, userID: userID, balance: account.Balance, now: s.now}
		if errFn = fn(stx); errFn != nil {
			return errFn
		}
		if stx.recorded == 0 {
			return nil
		}
		errSave := tx.Model(&models.TokenAccount{}).
			Where("user_id = ?", userID).
			Update("balance", stx.balance).Error
		if errSave != nil {
			return fmt.Errorf("save balance: %w", errSave)
		}
		return nil
	})
	if errFn != nil {
		return errFn
	}
	if errTx != nil {
		return storageError(errTx)
	}
	return nil
}

// read runs a query, retrying once on failure unless the context is done.
func (s *Store) read(ctx context.Context, query func() error) error {
	errFirst := query()
	if errFirst == nil {
		return nil
	}
	if ctx.Err() != nil {
		return storageError(errFirst)
	}
	log.WithError(errFirst).Warn("ledger: read failed, retrying once")
	if errRetry := query(); errRetry != nil {
		return storageError(errRetry)
	}
	return nil
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ledger.ErrStorageUnavailable, err)
}

func toTransaction(row *models.TokenTransaction) ledger.Transaction {
	return ledger.Transaction{
		ID:        int64(row.ID),
		UserID:    row.UserID,
		Title:     row.Title,
		Amount:    row.Amount,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

// sqlTx inserts records immediately inside the surrounding database
// transaction; a rollback discards them together with the balance change.
type sqlTx struct {
	db       *gorm.DB
	userID   uint64
	balance  int64
	recorded int
	now      func() time.Time
}

func (t *sqlTx) Balance() int64 { return t.balance }

func (t *sqlTx) Record(title string, amount int64) (ledger.Transaction, error) {
	cleaned, err := ledger.ValidateEntry(t.balance, title, amount)
	if err != nil {
		return ledger.Transaction{}, err
	}
	row := models.TokenTransaction{
		UserID:    t.userID,
		Title:     cleaned,
		Amount:    amount,
		CreatedAt: t.now(),
	}
	if errCreate := t.db.Create(&row).Error; errCreate != nil {
		return ledger.Transaction{}, storageError(errCreate)
	}
	t.balance += amount
	t.recorded++
	return toTransaction(&row), nil
}

var _ ledger.Store = (*Store)(nil)
