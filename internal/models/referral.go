package models

import "time"

// ReferralCode is a shareable invitation code owned by a user.
type ReferralCode struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.
	UserID uint64 `gorm:"not null;index"`           // Owning user ID.

	Code      string `gorm:"type:varchar(32);not null;uniqueIndex"` // Invitation code.
	UsedCount int    `gorm:"not null;default:0"`                    // Completed redemptions.
	Active    bool   `gorm:"not null;default:true"`                 // Only the latest code is active.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// Referral statuses.
const (
	ReferralPending   = "pending"
	ReferralCompleted = "completed"
)

// Referral records one redemption of a referral code.
type Referral struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Code       string `gorm:"type:varchar(32);not null;index"` // Redeemed code.
	ReferrerID uint64 `gorm:"not null;index"`                  // Code owner.
	ReferredID uint64 `gorm:"not null;uniqueIndex"`            // Redeeming user, at most once.

	Status       string     `gorm:"type:varchar(16);not null;default:'pending'"` // pending, completed.
	RewardAmount int64      `gorm:"not null;default:0"`                          // Tokens granted to each side.
	CompletedAt  *time.Time // Completion time.

	ReferrerRewarded bool `gorm:"not null;default:false"` // Referrer reward claimed.
	ReferredRewarded bool `gorm:"not null;default:false"` // Referred reward claimed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
