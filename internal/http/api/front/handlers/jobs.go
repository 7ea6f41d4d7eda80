package handlers

import (
	"net/http"

	"github.com/careerhub/careerhub/internal/models"
	"github.com/gin-gonic/gin"
)

// ListJobs returns the user's job matches.
func (h *CareerHandler) ListJobs(c *gin.Context) {
	rows, errList := h.store.ListJobMatches(c.Request.Context(), getUserID(c))
	if errList != nil {
		writeError(c, errList, "list jobs")
		return
	}
	out := make([]jobDTO, 0, len(rows))
	for _, row := range rows {
		dto := jobDTO{ID: row.JobID, Match: row.Score, Status: row.Status}
		if row.Job != nil {
			dto.Title = row.Job.Title
			dto.Company = row.Job.Company
			dto.Location = row.Job.Location
			dto.Type = row.Job.Type
			dto.Description = row.Job.Description
			dto.Skills = nonNil(row.Job.Skills)
		}
		out = append(out, dto)
	}
	c.JSON(http.StatusOK, out)
}

// SaveJob bookmarks a job match.
func (h *CareerHandler) SaveJob(c *gin.Context) {
	h.updateJobStatus(c, models.JobMatchSaved)
}

// ApplyJob marks a job match applied.
func (h *CareerHandler) ApplyJob(c *gin.Context) {
	h.updateJobStatus(c, models.JobMatchApplied)
}

func (h *CareerHandler) updateJobStatus(c *gin.Context, status string) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if errUpdate := h.store.UpdateJobStatus(c.Request.Context(), getUserID(c), id, status); errUpdate != nil {
		writeError(c, errUpdate, "update job")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPrograms returns the open programs.
func (h *CareerHandler) ListPrograms(c *gin.Context) {
	rows, errList := h.store.ListPrograms(c.Request.Context())
	if errList != nil {
		writeError(c, errList, "list programs")
		return
	}
	out := make([]programDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, programDTO{
			ID:           row.ID,
			Title:        row.Title,
			Category:     row.Category,
			Location:     row.Location,
			StartDate:    row.StartDate,
			EndDate:      row.EndDate,
			Description:  row.Description,
			Organizer:    row.Organizer,
			Requirements: nonNil(row.Requirements),
			TeamSize:     row.TeamSize,
			Status:       row.Status,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ApplyProgram records an application to a program.
func (h *CareerHandler) ApplyProgram(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if errApply := h.store.ApplyProgram(c.Request.Context(), getUserID(c), id); errApply != nil {
		writeError(c, errApply, "apply program")
		return
	}
	c.Status(http.StatusNoContent)
}
