package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/models"
	"github.com/careerhub/careerhub/internal/upstream"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// GetClone returns the user's AI clone, generating it on first access.
func (h *CareerHandler) GetClone(c *gin.Context) {
	row, errGet := h.store.GetClone(c.Request.Context(), getUserID(c))
	if errGet == nil {
		c.JSON(http.StatusOK, toCloneDTO(*row))
		return
	}
	if !errors.Is(errGet, career.ErrNotFound) {
		writeError(c, errGet, "load clone")
		return
	}
	h.GenerateClone(c)
}

// GenerateClone rebuilds the user's AI clone through the backend.
func (h *CareerHandler) GenerateClone(c *gin.Context) {
	userID := getUserID(c)
	profile, errGenerate := h.upstream.GenerateClone(c.Request.Context(), upstreamToken(c), userID)
	if errGenerate != nil {
		writeError(c, errGenerate, "generate clone")
		return
	}
	row, errBuild := cloneFromProfile(userID, profile)
	if errBuild != nil {
		writeError(c, errBuild, "generate clone")
		return
	}
	saved, errSave := h.store.SaveClone(c.Request.Context(), row)
	if errSave != nil {
		writeError(c, errSave, "save clone")
		return
	}
	c.JSON(http.StatusOK, toCloneDTO(*saved))
}

func cloneFromProfile(userID uint64, profile upstream.CloneProfile) (*models.AIClone, error) {
	recs := profile.Recommendations
	if recs == nil {
		recs = []upstream.CareerPath{}
	}
	encoded, errMarshal := json.Marshal(recs)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return &models.AIClone{
		UserID:          userID,
		Name:            profile.Name,
		Role:            profile.Role,
		Personality:     profile.Personality,
		Summary:         profile.Summary,
		Strengths:       nonNil(profile.Strengths),
		Recommendations: datatypes.JSON(encoded),
	}, nil
}
