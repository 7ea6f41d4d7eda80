package career

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/careerhub/careerhub/internal/models"
	"github.com/careerhub/careerhub/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReferralRewardTitle is the ledger title of referral rewards.
const ReferralRewardTitle = "친구 초대 보상"

const (
	referralCodePrefix   = "CH"
	referralCodeAttempts = 5
)

// ReferralCode returns the user's active code, creating one on first use.
func (s *Store) ReferralCode(ctx context.Context, userID uint64) (*models.ReferralCode, error) {
	var row models.ReferralCode
	errFind := s.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("id DESC").
		First(&row).Error
	if errFind == nil {
		return &row, nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("career: load referral code: %w", errFind)
	}
	return s.RegenerateReferralCode(ctx, userID)
}

// RegenerateReferralCode deactivates the user's codes and issues a new one.
// Old codes stay resolvable for history but can no longer be redeemed.
func (s *Store) RegenerateReferralCode(ctx context.Context, userID uint64) (*models.ReferralCode, error) {
	var created models.ReferralCode
	var lastErr error
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		code, errCode := security.GenerateReferralCode(referralCodePrefix)
		if errCode != nil {
			return nil, errCode
		}
		lastErr = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if errUpdate := tx.Model(&models.ReferralCode{}).
				Where("user_id = ? AND active = ?", userID, true).
				Update("active", false).Error; errUpdate != nil {
				return errUpdate
			}
			created = models.ReferralCode{UserID: userID, Code: code, Active: true}
			return tx.Create(&created).Error
		})
		if lastErr == nil {
			return &created, nil
		}
		log.WithError(lastErr).Debug("career: referral code insert failed, retrying")
	}
	return nil, fmt.Errorf("career: create referral code: %w", lastErr)
}

// ListReferrals returns referrals made with the user's codes, newest first.
func (s *Store) ListReferrals(ctx context.Context, userID uint64) ([]models.Referral, error) {
	rows := []models.Referral{}
	if errFind := s.db.WithContext(ctx).
		Where("referrer_id = ?", userID).
		Order("id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("career: list referrals: %w", errFind)
	}
	return rows, nil
}

// RedeemReferral applies another user's code for userID. Both sides receive
// the configured reward through the ledger. A user can redeem at most once
// and never their own code. A redemption left pending by a failed reward is
// resumed when the same code is redeemed again; only unpaid sides are
// credited.
func (s *Store) RedeemReferral(ctx context.Context, userID uint64, code string) (*models.Referral, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}

	unlock := s.redeemLocks.Lock(userID)
	defer unlock()

	referral, errClaim := s.claimReferral(ctx, userID, code)
	if errClaim != nil {
		return nil, errClaim
	}
	if errReward := s.payReferral(ctx, referral); errReward != nil {
		return nil, errReward
	}

	completedAt := s.now()
	var completed bool
	errComplete := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Referral{}).
			Where("id = ? AND status = ? AND referrer_rewarded = ? AND referred_rewarded = ?",
				referral.ID, models.ReferralPending, true, true).
			Updates(map[string]any{
				"status":       models.ReferralCompleted,
				"completed_at": completedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		completed = true
		return tx.Model(&models.ReferralCode{}).
			Where("code = ?", referral.Code).
			Update("used_count", gorm.Expr("used_count + ?", 1)).Error
	})
	if errComplete != nil {
		return nil, fmt.Errorf("career: complete referral: %w", errComplete)
	}
	if !completed {
		return nil, fmt.Errorf("%w: referral redemption in progress", ErrConflict)
	}
	referral.Status = models.ReferralCompleted
	referral.CompletedAt = &completedAt
	return referral, nil
}

// claimReferral returns the user's pending referral for code, creating it
// when the user has never redeemed one.
func (s *Store) claimReferral(ctx context.Context, userID uint64, code string) (*models.Referral, error) {
	var referral models.Referral
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Referral
		errExisting := tx.Where("referred_id = ?", userID).First(&existing).Error
		switch {
		case errExisting == nil:
			if existing.Status == models.ReferralPending && existing.Code == code {
				referral = existing
				return nil
			}
			return fmt.Errorf("%w: referral already redeemed", ErrConflict)
		case !errors.Is(errExisting, gorm.ErrRecordNotFound):
			return fmt.Errorf("career: check referral: %w", errExisting)
		}

		var owner models.ReferralCode
		if errFind := tx.Where("code = ? AND active = ?", code, true).First(&owner).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("career: load referral code: %w", errFind)
		}
		if owner.UserID == userID {
			return fmt.Errorf("%w: cannot redeem own code", ErrForbidden)
		}
		referral = models.Referral{
			Code:         code,
			ReferrerID:   owner.UserID,
			ReferredID:   userID,
			Status:       models.ReferralPending,
			RewardAmount: s.referralReward,
		}
		if errCreate := tx.Create(&referral).Error; errCreate != nil {
			return fmt.Errorf("career: create referral: %w", errCreate)
		}
		return nil
	})
	if errTx == nil {
		return &referral, nil
	}
	if isCareerError(errTx) {
		return nil, errTx
	}
	// Another instance may have inserted the row between our check and create.
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Referral{}).
		Where("referred_id = ?", userID).
		Count(&count).Error; errCount == nil && count > 0 {
		return nil, fmt.Errorf("%w: referral already redeemed", ErrConflict)
	}
	return nil, errTx
}

// payReferral credits each side whose reward has not been claimed yet. A side
// is claimed before crediting and released again if the credit fails, so
// concurrent resumes never pay the same side twice.
func (s *Store) payReferral(ctx context.Context, referral *models.Referral) error {
	sides := []struct {
		userID  uint64
		column  string
		claimed *bool
	}{
		{referral.ReferrerID, "referrer_rewarded", &referral.ReferrerRewarded},
		{referral.ReferredID, "referred_rewarded", &referral.ReferredRewarded},
	}
	for _, side := range sides {
		if *side.claimed {
			continue
		}
		res := s.db.WithContext(ctx).Model(&models.Referral{}).
			Where("id = ? AND "+side.column+" = ?", referral.ID, false).
			Update(side.column, true)
		if res.Error != nil {
			return fmt.Errorf("career: claim referral reward: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			continue
		}
		*side.claimed = true
		if referral.RewardAmount <= 0 || s.credits == nil {
			continue
		}
		if _, errCredit := s.credits.Credit(ctx, side.userID, ReferralRewardTitle, referral.RewardAmount); errCredit != nil {
			fields := log.Fields{"referral_id": referral.ID, "user_id": side.userID}
			if errRelease := s.db.WithContext(context.WithoutCancel(ctx)).Model(&models.Referral{}).
				Where("id = ?", referral.ID).
				Update(side.column, false).Error; errRelease != nil {
				log.WithError(errRelease).WithFields(fields).Error("career: release referral reward claim failed")
			}
			*side.claimed = false
			log.WithError(errCredit).WithFields(fields).Error("career: referral reward failed, referral left pending")
			return fmt.Errorf("career: referral reward: %w", errCredit)
		}
	}
	return nil
}

func isCareerError(err error) bool {
	for _, sentinel := range []error{ErrNotFound, ErrForbidden, ErrConflict, ErrInvalidInput} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
