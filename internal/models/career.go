package models

import (
	"time"

	"gorm.io/datatypes"
)

// Experience is a logged career experience.
type Experience struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.
	UserID uint64 `gorm:"not null;index"`           // Owning user ID.

	Title       string                      `gorm:"type:text;not null"` // Activity title.
	Role        string                      `gorm:"type:text;not null"` // Role in the activity.
	StartDate   string                      `gorm:"type:varchar(32)"`   // Start date as entered.
	EndDate     string                      `gorm:"type:varchar(32)"`   // End date as entered.
	Achievement *string                     `gorm:"type:text"`          // Optional achievement.
	Tags        datatypes.JSONSlice[string] `gorm:"type:json"`          // Free-form tags.
	Summary     string                      `gorm:"type:text"`          // AI summary from upstream.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// PortfolioItem is a generated portfolio entry.
type PortfolioItem struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.
	UserID uint64 `gorm:"not null;index"`           // Owning user ID.

	Title       string                      `gorm:"type:text;not null"` // Item title.
	Description string                      `gorm:"type:text"`          // Item description.
	Skills      datatypes.JSONSlice[string] `gorm:"type:json"`          // Highlighted skills.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// Profile is a public teammate/mentor profile referenced by recommendations.
type Profile struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name       string                      `gorm:"type:text;not null"` // Display name.
	Role       string                      `gorm:"type:text"`          // Role headline.
	Experience string                      `gorm:"type:text"`          // Experience summary.
	ImageURL   string                      `gorm:"type:text"`          // Avatar URL.
	Bio        string                      `gorm:"type:text"`          // Self introduction.
	Skills     datatypes.JSONSlice[string] `gorm:"type:json"`          // Skills.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// Recommendation statuses.
const (
	RecommendationPending  = "pending"
	RecommendationAccepted = "accepted"
	RecommendationRejected = "rejected"
)

// Recommendation links a user to a recommended teammate profile.
type Recommendation struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.
	UserID uint64 `gorm:"not null;index"`           // Recipient user ID.

	ProfileID uint64   `gorm:"not null;index"`        // Recommended profile ID.
	Profile   *Profile `gorm:"foreignKey:ProfileID"` // Recommended profile.

	Score  int    `gorm:"not null;default:0"`                          // Match score 0-100.
	Status string `gorm:"type:varchar(16);not null;default:'pending'"` // pending, accepted, rejected.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Message is one chat message between the user and the career assistant.
type Message struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.
	UserID uint64 `gorm:"not null;index"`           // Owning user ID.

	Content string         `gorm:"type:text;not null"`     // Message text.
	IsUser  bool           `gorm:"not null;default:false"` // True for user-authored messages.
	Chart   datatypes.JSON `gorm:"type:json"`              // Optional chart payload.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// JobPosting is an open position.
type JobPosting struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title       string                      `gorm:"type:text;not null"` // Position title.
	Company     string                      `gorm:"type:text;not null"` // Company name.
	Location    string                      `gorm:"type:text"`          // Work location.
	Type        string                      `gorm:"type:varchar(32)"`   // Employment type.
	Description string                      `gorm:"type:text"`          // Position description.
	Skills      datatypes.JSONSlice[string] `gorm:"type:json"`          // Required skills.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// Job match statuses.
const (
	JobMatchRecommended = "recommended"
	JobMatchSaved       = "saved"
	JobMatchApplied     = "applied"
)

// JobMatch links a user to a job posting with a match score and status.
type JobMatch struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`                      // Primary key.
	UserID uint64 `gorm:"not null;uniqueIndex:idx_job_matches_user_job"` // Candidate user ID.
	JobID  uint64 `gorm:"not null;uniqueIndex:idx_job_matches_user_job"` // Job posting ID.

	Job *JobPosting `gorm:"foreignKey:JobID"` // Related posting.

	Score  int    `gorm:"not null;default:0"`                              // Match score 0-100.
	Status string `gorm:"type:varchar(16);not null;default:'recommended'"` // recommended, saved, applied.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Program is a contest, hackathon or study group open for applications.
type Program struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title        string                      `gorm:"type:text;not null"`   // Program title.
	Category     string                      `gorm:"type:varchar(32)"`     // Category label.
	Location     string                      `gorm:"type:text"`            // Location or "온라인".
	StartDate    string                      `gorm:"type:varchar(32)"`     // Start date.
	EndDate      string                      `gorm:"type:varchar(32)"`     // End date.
	Description  string                      `gorm:"type:text"`            // Description.
	Organizer    string                      `gorm:"type:text"`            // Organizer name.
	Requirements datatypes.JSONSlice[string] `gorm:"type:json"`            // Requirements list.
	TeamSize     *int                        // Optional team size.
	Status       string                      `gorm:"type:varchar(16);not null;default:'recruiting'"` // recruiting, active, completed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// ProgramApplication records a user's application to a program.
type ProgramApplication struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`                              // Primary key.
	ProgramID uint64 `gorm:"not null;uniqueIndex:idx_program_applications_user_prog"` // Program ID.
	UserID    uint64 `gorm:"not null;uniqueIndex:idx_program_applications_user_prog"` // Applicant user ID.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// AIClone stores the generated clone profile of a user.
type AIClone struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.
	UserID uint64 `gorm:"not null;uniqueIndex"`     // Owning user ID.

	Name            string                      `gorm:"type:text;not null"` // Clone display name.
	Role            string                      `gorm:"type:text"`          // Role headline.
	Personality     string                      `gorm:"type:text"`          // Personality summary.
	Summary         string                      `gorm:"type:text"`          // Career summary.
	Strengths       datatypes.JSONSlice[string] `gorm:"type:json"`          // Strength keywords.
	Recommendations datatypes.JSON              `gorm:"type:json"`          // Career path recommendations.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last regeneration timestamp.
}

// SelfIntroFeedback stores AI feedback on a self-introduction draft.
type SelfIntroFeedback struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.
	UserID uint64 `gorm:"not null;index"`           // Owning user ID.

	Subject  string `gorm:"type:text;not null"` // Prompt subject.
	Content  string `gorm:"type:text;not null"` // Submitted draft.
	Feedback string `gorm:"type:text;not null"` // Feedback text.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
