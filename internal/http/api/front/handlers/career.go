package handlers

import (
	"encoding/json"
	"time"

	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/models"
)

// CareerHandler serves the experience, portfolio, recommendation, chat, job,
// program, clone and self-introduction endpoints.
type CareerHandler struct {
	store    *career.Store
	upstream Upstream
}

// NewCareerHandler constructs a CareerHandler.
func NewCareerHandler(store *career.Store, up Upstream) *CareerHandler {
	return &CareerHandler{store: store, upstream: up}
}

type experienceDTO struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"userId"`
	Title       string    `json:"title"`
	Role        string    `json:"role"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Achievement *string   `json:"achievement"`
	Tags        []string  `json:"tags"`
	Summary     string    `json:"summary"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toExperienceDTO(row models.Experience) experienceDTO {
	return experienceDTO{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Role:        row.Role,
		StartDate:   row.StartDate,
		EndDate:     row.EndDate,
		Achievement: row.Achievement,
		Tags:        nonNil(row.Tags),
		Summary:     row.Summary,
		CreatedAt:   row.CreatedAt,
	}
}

type portfolioItemDTO struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	CreatedAt   time.Time `json:"createdAt"`
}

type profileDTO struct {
	ID         uint64   `json:"id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Experience string   `json:"experience"`
	ImageURL   string   `json:"imageUrl"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
}

type recommendationDTO struct {
	ID      uint64     `json:"id"`
	Match   int        `json:"match"`
	Status  string     `json:"status"`
	Profile profileDTO `json:"profile"`
}

type messageDTO struct {
	ID        uint64          `json:"id"`
	UserID    uint64          `json:"userId"`
	Content   string          `json:"content"`
	IsUser    bool            `json:"isUser"`
	Chart     json.RawMessage `json:"chart"`
	Timestamp time.Time       `json:"timestamp"`
}

func toMessageDTO(row models.Message) messageDTO {
	chart := json.RawMessage("null")
	if len(row.Chart) > 0 {
		chart = json.RawMessage(row.Chart)
	}
	return messageDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		Content:   row.Content,
		IsUser:    row.IsUser,
		Chart:     chart,
		Timestamp: row.CreatedAt,
	}
}

type jobDTO struct {
	ID          uint64   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Match       int      `json:"match"`
	Status      string   `json:"status"`
}

type programDTO struct {
	ID           uint64   `json:"id"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Description  string   `json:"description"`
	Organizer    string   `json:"organizer"`
	Requirements []string `json:"requirements"`
	TeamSize     *int     `json:"teamSize"`
	Status       string   `json:"status"`
}

type cloneDTO struct {
	ID              uint64          `json:"id"`
	UserID          uint64          `json:"userId"`
	Name            string          `json:"name"`
	Role            string          `json:"role"`
	Personality     string          `json:"personality"`
	Summary         string          `json:"summary"`
	Strengths       []string        `json:"strengths"`
	Recommendations json.RawMessage `json:"recommendations"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func toCloneDTO(row models.AIClone) cloneDTO {
	recs := json.RawMessage("[]")
	if len(row.Recommendations) > 0 {
		recs = json.RawMessage(row.Recommendations)
	}
	return cloneDTO{
		ID:              row.ID,
		UserID:          row.UserID,
		Name:            row.Name,
		Role:            row.Role,
		Personality:     row.Personality,
		Summary:         row.Summary,
		Strengths:       nonNil(row.Strengths),
		Recommendations: recs,
		UpdatedAt:       row.UpdatedAt,
	}
}

type selfIntroFeedbackDTO struct {
	ID       int64  `json:"id"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
	Feedback string `json:"feedback"`
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
