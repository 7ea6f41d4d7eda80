package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/careerhub/careerhub/internal/catalog"
	"github.com/careerhub/careerhub/internal/events"
	log "github.com/sirupsen/logrus"
)

// RedeemTitleSuffix is appended to the service title on redemption records.
const RedeemTitleSuffix = " 사용"

// Engine redeems catalog services against user balances and applies credits.
type Engine struct {
	store     Store
	catalog   *catalog.Catalog
	publisher events.Publisher
}

// NewEngine wires an engine with its store, catalog and event publisher.
// A nil publisher disables event delivery.
func NewEngine(store Store, cat *catalog.Catalog, publisher events.Publisher) *Engine {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Engine{store: store, catalog: cat, publisher: publisher}
}

// Balance returns the user's current balance.
func (e *Engine) Balance(ctx context.Context, userID uint64) (int64, error) {
	return e.store.Balance(ctx, userID)
}

// History returns the user's transactions, most recent first.
func (e *Engine) History(ctx context.Context, userID uint64) ([]Transaction, error) {
	return e.store.History(ctx, userID)
}

// Services returns the redeemable services in catalog order.
func (e *Engine) Services() []catalog.Service {
	return e.catalog.List()
}

// Redeem debits the service cost from the user's balance. The balance check
// and the debit run inside one per-user critical section.
func (e *Engine) Redeem(ctx context.Context, userID uint64, serviceID int64) (Receipt, error) {
	svc, err := e.catalog.Get(serviceID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return Receipt{}, fmt.Errorf("%w: %d", ErrServiceNotFound, serviceID)
		}
		return Receipt{}, err
	}

	var receipt Receipt
	errUpdate := e.store.Update(ctx, userID, func(tx Tx) error {
		balance := tx.Balance()
		if balance < svc.Cost {
			return fmt.Errorf("%w: balance %d, cost %d", ErrInsufficientBalance, balance, svc.Cost)
		}
		entry, errRecord := tx.Record(svc.Title+RedeemTitleSuffix, -svc.Cost)
		if errRecord != nil {
			return errRecord
		}
		receipt = Receipt{NewBalance: tx.Balance(), Transaction: entry}
		return nil
	})
	if errUpdate != nil {
		return Receipt{}, errUpdate
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"service_id": serviceID,
		"cost":       svc.Cost,
		"balance":    receipt.NewBalance,
	}).Info("ledger: service redeemed")
	e.publish(ctx, receipt)
	return receipt, nil
}

// Credit adds a positive amount to the user's balance, e.g. a referral reward.
func (e *Engine) Credit(ctx context.Context, userID uint64, title string, amount int64) (Receipt, error) {
	if amount <= 0 {
		return Receipt{}, fmt.Errorf("%w: credit must be positive", ErrInvalidAmount)
	}
	receipt, err := Record(ctx, e.store, userID, title, amount)
	if err != nil {
		return Receipt{}, err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"amount":  amount,
		"balance": receipt.NewBalance,
	}).Infof("ledger: credited %q", receipt.Transaction.Title)
	e.publish(ctx, receipt)
	return receipt, nil
}

// publish emits the committed receipt; failures are logged only.
func (e *Engine) publish(ctx context.Context, receipt Receipt) {
	tx := receipt.Transaction
	event := events.TransactionRecorded{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Title:         tx.Title,
		Amount:        tx.Amount,
		Balance:       receipt.NewBalance,
		OccurredAt:    tx.CreatedAt,
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if errPublish := e.publisher.Publish(pubCtx, strconv.FormatUint(tx.UserID, 10), event); errPublish != nil {
		log.WithError(errPublish).WithField("transaction_id", tx.ID).Warn("ledger: publish transaction event failed")
	}
}
