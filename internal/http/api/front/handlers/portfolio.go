package handlers

import (
	"net/http"

	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/models"
	"github.com/gin-gonic/gin"
)

// ListPortfolio returns the user's portfolio items.
func (h *CareerHandler) ListPortfolio(c *gin.Context) {
	rows, errList := h.store.ListPortfolio(c.Request.Context(), getUserID(c))
	if errList != nil {
		writeError(c, errList, "list portfolio")
		return
	}
	out := make([]portfolioItemDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, portfolioItemDTO{
			ID:          row.ID,
			UserID:      row.UserID,
			Title:       row.Title,
			Description: row.Description,
			Skills:      nonNil(row.Skills),
			CreatedAt:   row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// CreatePortfolioItem stores a portfolio item.
func (h *CareerHandler) CreatePortfolioItem(c *gin.Context) {
	var body career.PortfolioInput
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid portfolio data"})
		return
	}
	row, errCreate := h.store.CreatePortfolioItem(c.Request.Context(), getUserID(c), body)
	if errCreate != nil {
		writeError(c, errCreate, "create portfolio item")
		return
	}
	c.JSON(http.StatusCreated, portfolioItemDTO{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		Skills:      nonNil(row.Skills),
		CreatedAt:   row.CreatedAt,
	})
}

// ListRecommendations returns pending teammate recommendations.
func (h *CareerHandler) ListRecommendations(c *gin.Context) {
	rows, errList := h.store.ListRecommendations(c.Request.Context(), getUserID(c))
	if errList != nil {
		writeError(c, errList, "list recommendations")
		return
	}
	out := make([]recommendationDTO, 0, len(rows))
	for _, row := range rows {
		dto := recommendationDTO{ID: row.ID, Match: row.Score, Status: row.Status}
		if row.Profile != nil {
			dto.Profile = profileDTO{
				ID:         row.Profile.ID,
				Name:       row.Profile.Name,
				Role:       row.Profile.Role,
				Experience: row.Profile.Experience,
				ImageURL:   row.Profile.ImageURL,
				Bio:        row.Profile.Bio,
				Skills:     nonNil(row.Profile.Skills),
			}
		}
		out = append(out, dto)
	}
	c.JSON(http.StatusOK, out)
}

// AcceptRecommendation marks a recommendation accepted.
func (h *CareerHandler) AcceptRecommendation(c *gin.Context) {
	h.setRecommendationStatus(c, models.RecommendationAccepted)
}

// RejectRecommendation marks a recommendation rejected.
func (h *CareerHandler) RejectRecommendation(c *gin.Context) {
	h.setRecommendationStatus(c, models.RecommendationRejected)
}

func (h *CareerHandler) setRecommendationStatus(c *gin.Context, status string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if errSet := h.store.SetRecommendationStatus(c.Request.Context(), getUserID(c), id, status); errSet != nil {
		writeError(c, errSet, "update recommendation")
		return
	}
	c.Status(http.StatusNoContent)
}
