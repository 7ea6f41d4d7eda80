package career

import (
	"context"
	"fmt"

	"github.com/careerhub/careerhub/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// SignupGrantTitle is the ledger title of the welcome tokens.
const SignupGrantTitle = "가입 축하 토큰"

// GrantSignupTokens credits amount to the user the first time it is called for
// that user and reports whether this call granted it. The marker row is
// removed again when the credit fails so a later login can retry.
func (s *Store) GrantSignupTokens(ctx context.Context, userID uint64, amount int64) (bool, error) {
	if amount <= 0 || s.credits == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SignupGrant{UserID: userID, Amount: amount})
	if res.Error != nil {
		return false, fmt.Errorf("career: mark signup grant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if _, errCredit := s.credits.Credit(ctx, userID, SignupGrantTitle, amount); errCredit != nil {
		if errDelete := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SignupGrant{}).Error; errDelete != nil {
			log.WithError(errDelete).WithField("user_id", userID).Error("career: unmark signup grant failed")
		}
		return false, fmt.Errorf("career: signup grant: %w", errCredit)
	}
	return true, nil
}
