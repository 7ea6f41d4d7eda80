// Package career is the gorm-backed store for the non-ledger features:
// experiences, portfolio, recommendations, chat, jobs, programs, clones,
// self-introduction feedback and referrals.
package career

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/careerhub/careerhub/internal/db"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Career store errors.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("career: not found")
	// ErrForbidden indicates the row belongs to another user.
	ErrForbidden = errors.New("career: forbidden")
	// ErrConflict indicates the change conflicts with current state.
	ErrConflict = errors.New("career: conflict")
	// ErrInvalidInput indicates missing or malformed input.
	ErrInvalidInput = errors.New("career: invalid input")
)

// Crediter grants tokens; satisfied by *ledger.Engine.
type Crediter interface {
	Credit(ctx context.Context, userID uint64, title string, amount int64) (ledger.Receipt, error)
}

// Store implements the career repositories on one gorm connection.
type Store struct {
	db             *gorm.DB
	credits        Crediter
	referralReward int64
	redeemLocks    *ledger.UserLocks
	now            func() time.Time
}

// NewStore builds a Store. credits may be nil when referrals are unused.
func NewStore(conn *gorm.DB, credits Crediter, referralReward int64) *Store {
	return &Store{
		db:             conn,
		credits:        credits,
		referralReward: referralReward,
		redeemLocks:    ledger.NewUserLocks(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ExperienceInput holds the editable fields of an experience.
type ExperienceInput struct {
	Title       string   `json:"title" binding:"required"`
	Role        string   `json:"role" binding:"required"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Achievement *string  `json:"achievement"`
	Tags        []string `json:"tags"`
}

func (in *ExperienceInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Role = strings.TrimSpace(in.Role)
	if in.Title == "" || in.Role == "" {
		return fmt.Errorf("%w: title and role are required", ErrInvalidInput)
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	return nil
}

// ListExperiences returns the user's experiences, newest first.
func (s *Store) ListExperiences(ctx context.Context, userID uint64) ([]models.Experience, error) {
	rows := []models.Experience{}
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("career: list experiences: %w", errFind)
	}
	return rows, nil
}

// CreateExperience stores a new experience with its upstream summary.
func (s *Store) CreateExperience(ctx context.Context, userID uint64, in ExperienceInput, summary string) (*models.Experience, error) {
	if errInput := in.normalize(); errInput != nil {
		return nil, errInput
	}
	row := models.Experience{
		UserID:      userID,
		Title:       in.Title,
		Role:        in.Role,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Achievement: in.Achievement,
		Tags:        in.Tags,
		Summary:     summary,
	}
	if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		return nil, fmt.Errorf("career: create experience: %w", errCreate)
	}
	return &row, nil
}

// UpdateExperience replaces the editable fields of an owned experience.
func (s *Store) UpdateExperience(ctx context.Context, userID, id uint64, in ExperienceInput) (*models.Experience, error) {
	if errInput := in.normalize(); errInput != nil {
		return nil, errInput
	}
	row, errOwned := s.ownedExperience(ctx, userID, id)
	if errOwned != nil {
		return nil, errOwned
	}
	row.Title = in.Title
	row.Role = in.Role
	row.StartDate = in.StartDate
	row.EndDate = in.EndDate
	row.Achievement = in.Achievement
	row.Tags = in.Tags
	if errSave := s.db.WithContext(ctx).Save(row).Error; errSave != nil {
		return nil, fmt.Errorf("career: update experience: %w", errSave)
	}
	return row, nil
}

// DeleteExperience removes an owned experience.
func (s *Store) DeleteExperience(ctx context.Context, userID, id uint64) error {
	row, errOwned := s.ownedExperience(ctx, userID, id)
	if errOwned != nil {
		return errOwned
	}
	if errDelete := s.db.WithContext(ctx).Delete(row).Error; errDelete != nil {
		return fmt.Errorf("career: delete experience: %w", errDelete)
	}
	return nil
}

func (s *Store) ownedExperience(ctx context.Context, userID, id uint64) (*models.Experience, error) {
	var row models.Experience
	if errFind := s.db.WithContext(ctx).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("career: load experience: %w", errFind)
	}
	if row.UserID != userID {
		return nil, ErrForbidden
	}
	return &row, nil
}

// PortfolioInput holds the fields of a new portfolio item.
type PortfolioInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// ListPortfolio returns the user's portfolio items, newest first.
func (s *Store) ListPortfolio(ctx context.Context, userID uint64) ([]models.PortfolioItem, error) {
	rows := []models.PortfolioItem{}
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("career: list portfolio: %w", errFind)
	}
	return rows, nil
}

// CreatePortfolioItem stores a portfolio item.
func (s *Store) CreatePortfolioItem(ctx context.Context, userID uint64, in PortfolioInput) (*models.PortfolioItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Skills == nil {
		in.Skills = []string{}
	}
	row := models.PortfolioItem{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Skills:      in.Skills,
	}
	if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		return nil, fmt.Errorf("career: create portfolio item: %w", errCreate)
	}
	return &row, nil
}

// ListRecommendations returns pending recommendations with their profiles,
// best match first.
func (s *Store) ListRecommendations(ctx context.Context, userID uint64) ([]models.Recommendation, error) {
	rows := []models.Recommendation{}
	if errFind := s.db.WithContext(ctx).
		Preload("Profile").
		Where("user_id = ? AND status = ?", userID, models.RecommendationPending).
		Order("score DESC").Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("career: list recommendations: %w", errFind)
	}
	return rows, nil
}

// SetRecommendationStatus accepts or rejects an owned recommendation.
func (s *Store) SetRecommendationStatus(ctx context.Context, userID, id uint64, status string) error {
	if status != models.RecommendationAccepted && status != models.RecommendationRejected {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}
	var row models.Recommendation
	if errFind := s.db.WithContext(ctx).First(&row, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("career: load recommendation: %w", errFind)
	}
	if row.UserID != userID {
		return ErrForbidden
	}
	if errUpdate := s.db.WithContext(ctx).
		Model(&models.Recommendation{}).
		Where("id = ?", id).
		Update("status", status).Error; errUpdate != nil {
		return fmt.Errorf("career: update recommendation: %w", errUpdate)
	}
	return nil
}

// ListMessages returns the user's chat in conversation order.
func (s *Store) ListMessages(ctx context.Context, userID uint64) ([]models.Message, error) {
	rows := []models.Message{}
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("career: list messages: %w", errFind)
	}
	return rows, nil
}

// AppendExchange stores a user message and the assistant reply together.
func (s *Store) AppendExchange(ctx context.Context, userID uint64, question, answer string) (*models.Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: message content is required", ErrInvalidInput)
	}
	reply := models.Message{UserID: userID, Content: answer, IsUser: false}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&models.Message{UserID: userID, Content: question, IsUser: true}).Error; errCreate != nil {
			return errCreate
		}
		return tx.Create(&reply).Error
	})
	if errTx != nil {
		return nil, fmt.Errorf("career: append messages: %w", errTx)
	}
	return &reply, nil
}

// ListJobMatches returns the user's job matches with their postings, best
// match first.
func (s *Store) ListJobMatches(ctx context.Context, userID uint64) ([]models.JobMatch, error) {
	rows := []models.JobMatch{}
	if errFind := s.db.WithContext(ctx).
		Preload("Job").
		Where("user_id = ?", userID).
		Order("score DESC").Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("career: list jobs: %w", errFind)
	}
	return rows, nil
}

// UpdateJobStatus moves a job match forward. Allowed transitions are
// recommended to saved or applied, and saved to applied. Repeating the
// current status is a no-op.
func (s *Store) UpdateJobStatus(ctx context.Context, userID, jobID uint64, status string) error {
	if status != models.JobMatchSaved && status != models.JobMatchApplied {
		return fmt.Errorf("%w: status %q", ErrInvalidInput, status)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var match models.JobMatch
		errFind := tx.Clauses(lockingFor(tx)...).
			Where("user_id = ? AND job_id = ?", userID, jobID).
			First(&match).Error
		if errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("career: load job match: %w", errFind)
		}
		if match.Status == status {
			return nil
		}
		if match.Status == models.JobMatchApplied {
			return fmt.Errorf("%w: already applied", ErrConflict)
		}
		if errUpdate := tx.Model(&models.JobMatch{}).
			Where("id = ?", match.ID).
			Update("status", status).Error; errUpdate != nil {
			return fmt.Errorf("career: update job match: %w", errUpdate)
		}
		return nil
	})
}

// ListPrograms returns all programs, soonest start first.
func (s *Store) ListPrograms(ctx context.Context) ([]models.Program, error) {
	rows := []models.Program{}
	if errFind := s.db.WithContext(ctx).
		Order("start_date ASC").Order("id ASC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("career: list programs: %w", errFind)
	}
	return rows, nil
}

// ApplyProgram records an application; applying twice is a no-op.
func (s *Store) ApplyProgram(ctx context.Context, userID, programID uint64) error {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.Program{}).Where("id = ?", programID).Count(&count).Error; errCount != nil {
		return fmt.Errorf("career: load program: %w", errCount)
	}
	if count == 0 {
		return ErrNotFound
	}
	row := models.ProgramApplication{ProgramID: programID, UserID: userID}
	if errCreate := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; errCreate != nil {
		return fmt.Errorf("career: apply program: %w", errCreate)
	}
	return nil
}

// GetClone returns the user's AI clone.
func (s *Store) GetClone(ctx context.Context, userID uint64) (*models.AIClone, error) {
	var row models.AIClone
	if errFind := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("career: load clone: %w", errFind)
	}
	return &row, nil
}

// SaveClone replaces the user's AI clone.
func (s *Store) SaveClone(ctx context.Context, clone *models.AIClone) (*models.AIClone, error) {
	if clone == nil || clone.UserID == 0 {
		return nil, fmt.Errorf("%w: clone owner is required", ErrInvalidInput)
	}
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.AIClone
		errFind := tx.Where("user_id = ?", clone.UserID).First(&existing).Error
		switch {
		case errFind == nil:
			clone.ID = existing.ID
			clone.CreatedAt = existing.CreatedAt
			return tx.Save(clone).Error
		case errors.Is(errFind, gorm.ErrRecordNotFound):
			clone.ID = 0
			return tx.Create(clone).Error
		default:
			return errFind
		}
	})
	if errTx != nil {
		return nil, fmt.Errorf("career: save clone: %w", errTx)
	}
	return clone, nil
}

// ListSelfIntroFeedback returns stored feedback, newest first.
func (s *Store) ListSelfIntroFeedback(ctx context.Context, userID uint64) ([]models.SelfIntroFeedback, error) {
	rows := []models.SelfIntroFeedback{}
	if errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&rows).Error; errFind != nil {
		return nil, fmt.Errorf("career: list self intro feedback: %w", errFind)
	}
	return rows, nil
}

// SaveSelfIntroFeedback stores a copy of upstream feedback.
func (s *Store) SaveSelfIntroFeedback(ctx context.Context, userID uint64, subject, content, feedback string) (*models.SelfIntroFeedback, error) {
	row := models.SelfIntroFeedback{
		UserID:   userID,
		Subject:  subject,
		Content:  content,
		Feedback: feedback,
	}
	if errCreate := s.db.WithContext(ctx).Create(&row).Error; errCreate != nil {
		return nil, fmt.Errorf("career: save self intro feedback: %w", errCreate)
	}
	return &row, nil
}

// lockingFor returns a FOR UPDATE clause where the dialect supports row locks.
func lockingFor(tx *gorm.DB) []clause.Expression {
	if db.IsSQLite(tx) {
		return nil
	}
	return []clause.Expression{clause.Locking{Strength: "UPDATE"}}
}
