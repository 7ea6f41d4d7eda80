package events

import (
	"context"
	"time"
)

// TopicTransactionRecorded is the default topic for ledger events.
const TopicTransactionRecorded = "token_transaction_recorded"

// Publisher delivers domain events to an external bus.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// TransactionRecorded is emitted after a ledger mutation commits.
type TransactionRecorded struct {
	TransactionID int64     `json:"transaction_id"`
	UserID        uint64    `json:"user_id"`
	Title         string    `json:"title"`
	Amount        int64     `json:"amount"`
	Balance       int64     `json:"balance"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Noop discards every event.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, string, any) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }

var _ Publisher = Noop{}
