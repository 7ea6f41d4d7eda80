package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/careerhub/careerhub/internal/ledger"
)

// Store is an in-memory ledger store. Balance and history of a user live in
// one account guarded by that user's lock.
type Store struct {
	locks *ledger.UserLocks

	mu       sync.RWMutex
	accounts map[uint64]*account

	nextID atomic.Int64
	now    func() time.Time
}

type account struct {
	balance int64
	history []ledger.Transaction // creation order
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		locks:    ledger.NewUserLocks(),
		accounts: make(map[uint64]*account),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Balance implements ledger.Store.
func (s *Store) Balance(_ context.Context, userID uint64) (int64, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	acc := s.lookup(userID)
	if acc == nil {
		return 0, nil
	}
	return acc.balance, nil
}

// History implements ledger.Store.
func (s *Store) History(_ context.Context, userID uint64) ([]ledger.Transaction, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	acc := s.lookup(userID)
	if acc == nil {
		return []ledger.Transaction{}, nil
	}
	out := make([]ledger.Transaction, 0, len(acc.history))
	for i := len(acc.history) - 1; i >= 0; i-- {
		out = append(out, acc.history[i])
	}
	return out, nil
}

// Update implements ledger.Store.
func (s *Store) Update(ctx context.Context, userID uint64, fn func(tx ledger.Tx) error) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	unlock := s.locks.Lock(userID)
	defer unlock()

	var balance int64
	if acc := s.lookup(userID); acc != nil {
		balance = acc.balance
	}
	tx := &memTx{store: s, userID: userID, balance: balance}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.pending) == 0 {
		return nil
	}

	s.mu.Lock()
	acc, ok := s.accounts[userID]
	if !ok {
		acc = &account{}
		s.accounts[userID] = acc
	}
	acc.balance = tx.balance
	acc.history = append(acc.history, tx.pending...)
	s.mu.Unlock()
	return nil
}

func (s *Store) lookup(userID uint64) *account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[userID]
}

// memTx buffers records until Update commits them.
type memTx struct {
	store   *Store
	userID  uint64
	balance int64
	pending []ledger.Transaction
}

func (t *memTx) Balance() int64 { return t.balance }

func (t *memTx) Record(title string, amount int64) (ledger.Transaction, error) {
	cleaned, err := ledger.ValidateEntry(t.balance, title, amount)
	if err != nil {
		return ledger.Transaction{}, err
	}
	entry := ledger.Transaction{
		ID:        t.store.nextID.Add(1),
		UserID:    t.userID,
		Title:     cleaned,
		Amount:    amount,
		CreatedAt: t.store.now(),
	}
	t.balance += amount
	t.pending = append(t.pending, entry)
	return entry, nil
}

var _ ledger.Store = (*Store)(nil)
