// Package ledger holds the token ledger: per-user balances, their append-only
// transaction history and the redemption engine that spends them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ledger errors.
var (
	// ErrServiceNotFound indicates the redeemed service id is not in the catalog.
	ErrServiceNotFound = errors.New("ledger: service not found")
	// ErrInsufficientBalance indicates the balance cannot cover the debit.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")
	// ErrStorageUnavailable indicates the backing store could not be read or written.
	ErrStorageUnavailable = errors.New("ledger: storage unavailable")
	// ErrInvalidAmount indicates a zero or out-of-range amount.
	ErrInvalidAmount = errors.New("ledger: invalid amount")
	// ErrInvalidTitle indicates a missing transaction title.
	ErrInvalidTitle = errors.New("ledger: invalid title")
)

// Transaction is an immutable ledger record.
type Transaction struct {
	ID        int64     `json:"id"`     // Store-wide monotonic identifier.
	UserID    uint64    `json:"userId"` // Owning user.
	Title     string    `json:"title"`  // Human-readable title.
	Amount    int64     `json:"amount"` // Positive credit, negative debit.
	CreatedAt time.Time `json:"date"`   // Creation time.
}

// Receipt is the outcome of a committed mutation.
type Receipt struct {
	NewBalance  int64       `json:"newBalance"`
	Transaction Transaction `json:"transaction"`
}

// Tx is the view of one user's account inside its critical section.
type Tx interface {
	// Balance returns the balance including records made in this Tx.
	Balance() int64
	// Record appends a transaction and moves the balance by amount.
	Record(title string, amount int64) (Transaction, error)
}

// Store persists balances and history. Balance and history of one user are
// always updated together inside Update.
type Store interface {
	Balance(ctx context.Context, userID uint64) (int64, error)
	History(ctx context.Context, userID uint64) ([]Transaction, error)
	// Update runs fn inside the user's exclusive critical section. Nothing
	// recorded by fn is kept when fn returns an error.
	Update(ctx context.Context, userID uint64, fn func(tx Tx) error) error
}

// Record appends a single transaction for userID and returns the new balance.
func Record(ctx context.Context, store Store, userID uint64, title string, amount int64) (Receipt, error) {
	var receipt Receipt
	err := store.Update(ctx, userID, func(tx Tx) error {
		entry, errRecord := tx.Record(title, amount)
		if errRecord != nil {
			return errRecord
		}
		receipt = Receipt{NewBalance: tx.Balance(), Transaction: entry}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

// ValidateEntry checks a title/amount pair against the current balance.
// Stores call it from Tx.Record so no path can drive a balance negative.
func ValidateEntry(balance int64, title string, amount int64) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrInvalidTitle
	}
	if amount == 0 {
		return "", fmt.Errorf("%w: zero", ErrInvalidAmount)
	}
	if amount > 0 && balance > maxBalance-amount {
		return "", fmt.Errorf("%w: overflow", ErrInvalidAmount)
	}
	if balance+amount < 0 {
		return "", ErrInsufficientBalance
	}
	return title, nil
}

const maxBalance = int64(1<<63 - 1)
