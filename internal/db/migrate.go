package db

import (
	"fmt"

	"github.com/careerhub/careerhub/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(
		&models.TokenAccount{},
		&models.TokenTransaction{},
		&models.SignupGrant{},
		&models.Experience{},
		&models.PortfolioItem{},
		&models.Profile{},
		&models.Recommendation{},
		&models.Message{},
		&models.JobPosting{},
		&models.JobMatch{},
		&models.Program{},
		&models.ProgramApplication{},
		&models.AIClone{},
		&models.SelfIntroFeedback{},
		&models.ReferralCode{},
		&models.Referral{},
	); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	return nil
}
