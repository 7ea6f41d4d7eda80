package handlers

import (
	"net/http"

	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/upstream"
	"github.com/gin-gonic/gin"
)

// ListExperiences returns the user's experiences, newest first.
func (h *CareerHandler) ListExperiences(c *gin.Context) {
	rows, errList := h.store.ListExperiences(c.Request.Context(), getUserID(c))
	if errList != nil {
		writeError(c, errList, "list experiences")
		return
	}
	out := make([]experienceDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toExperienceDTO(row))
	}
	c.JSON(http.StatusOK, out)
}

// CreateExperience summarizes the experience upstream and stores it.
func (h *CareerHandler) CreateExperience(c *gin.Context) {
	var body career.ExperienceInput
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid experience data"})
		return
	}

	achievement := ""
	if body.Achievement != nil {
		achievement = *body.Achievement
	}
	summary, errSummary := h.upstream.SummarizeExperience(c.Request.Context(), upstreamToken(c), upstream.ExperienceInput{
		Title:       body.Title,
		Role:        body.Role,
		Achievement: achievement,
		Tags:        body.Tags,
	})
	if errSummary != nil {
		writeError(c, errSummary, "summarize experience")
		return
	}
	if len(body.Tags) == 0 && len(summary.Tags) > 0 {
		body.Tags = summary.Tags
	}

	row, errCreate := h.store.CreateExperience(c.Request.Context(), getUserID(c), body, summary.Summary)
	if errCreate != nil {
		writeError(c, errCreate, "create experience")
		return
	}
	c.JSON(http.StatusCreated, toExperienceDTO(*row))
}

// UpdateExperience edits an owned experience.
func (h *CareerHandler) UpdateExperience(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var body career.ExperienceInput
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid experience data"})
		return
	}
	row, errUpdate := h.store.UpdateExperience(c.Request.Context(), getUserID(c), id, body)
	if errUpdate != nil {
		writeError(c, errUpdate, "update experience")
		return
	}
	c.JSON(http.StatusOK, toExperienceDTO(*row))
}

// DeleteExperience removes an owned experience.
func (h *CareerHandler) DeleteExperience(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if errDelete := h.store.DeleteExperience(c.Request.Context(), getUserID(c), id); errDelete != nil {
		writeError(c, errDelete, "delete experience")
		return
	}
	c.Status(http.StatusNoContent)
}
