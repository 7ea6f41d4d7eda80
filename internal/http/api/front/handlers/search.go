package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/careerhub/careerhub/internal/upstream"
	"github.com/gin-gonic/gin"
)

// SearchProfiles finds internal profiles matching the query.
func (h *CareerHandler) SearchProfiles(c *gin.Context) {
	h.search(c, h.upstream.SearchProfiles)
}

// SearchExternalProfiles finds external profiles matching the query.
func (h *CareerHandler) SearchExternalProfiles(c *gin.Context) {
	h.search(c, h.upstream.SearchExternalProfiles)
}

func (h *CareerHandler) search(c *gin.Context, fn func(ctx context.Context, token, query string) ([]upstream.ProfileMatch, error)) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}
	matches, errSearch := fn(c.Request.Context(), upstreamToken(c), query)
	if errSearch != nil {
		writeError(c, errSearch, "search profiles")
		return
	}
	c.JSON(http.StatusOK, matches)
}
