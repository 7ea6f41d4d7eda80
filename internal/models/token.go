package models

import "time"

// TokenAccount stores the current token balance of a user.
type TokenAccount struct {
	UserID  uint64 `gorm:"primaryKey;autoIncrement:false"` // Owning user ID.
	Balance int64  `gorm:"not null;default:0"`             // Current balance, never negative.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// TokenTransaction is an immutable ledger entry.
type TokenTransaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key, monotonic.

	UserID uint64 `gorm:"not null;index:idx_token_transactions_user_created,priority:1"` // Owning user ID.
	Title  string `gorm:"type:text;not null"`                                           // Human-readable title.
	Amount int64  `gorm:"not null"`                                                     // Signed amount.

	CreatedAt time.Time `gorm:"not null;index:idx_token_transactions_user_created,priority:2"` // Creation timestamp.
}

// SignupGrant marks users that already received the welcome tokens.
type SignupGrant struct {
	UserID uint64 `gorm:"primaryKey;autoIncrement:false"` // Granted user ID.
	Amount int64  `gorm:"not null"`                       // Granted amount.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Grant timestamp.
}
