package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/careerhub/careerhub/internal/upstream"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type selfIntroRequest struct {
	Subject string `json:"subject" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ListSelfIntroFeedback returns the reviewed drafts from the backend, falling
// back to the stored copies when the backend is unreachable.
func (h *CareerHandler) ListSelfIntroFeedback(c *gin.Context) {
	ctx := c.Request.Context()
	items, errList := h.upstream.ListSelfIntroFeedback(ctx, upstreamToken(c))
	if errList == nil {
		out := make([]selfIntroFeedbackDTO, 0, len(items))
		for _, item := range items {
			out = append(out, selfIntroFeedbackDTO{ID: item.ID, Subject: item.Subject, Content: item.Content, Feedback: item.Feedback})
		}
		c.JSON(http.StatusOK, out)
		return
	}
	if !errors.Is(errList, upstream.ErrUnavailable) {
		writeError(c, errList, "list self intro feedback")
		return
	}

	log.WithError(errList).Warn("self intro feedback: serving stored copies")
	rows, errStored := h.store.ListSelfIntroFeedback(ctx, getUserID(c))
	if errStored != nil {
		writeError(c, errStored, "list self intro feedback")
		return
	}
	out := make([]selfIntroFeedbackDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, selfIntroFeedbackDTO{ID: int64(row.ID), Subject: row.Subject, Content: row.Content, Feedback: row.Feedback})
	}
	c.JSON(http.StatusOK, out)
}

// RequestSelfIntroFeedback submits a draft for review and keeps a copy.
func (h *CareerHandler) RequestSelfIntroFeedback(c *gin.Context) {
	var body selfIntroRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject and content are required"})
		return
	}
	subject := strings.TrimSpace(body.Subject)
	content := strings.TrimSpace(body.Content)
	if subject == "" || content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject and content are required"})
		return
	}

	ctx := c.Request.Context()
	result, errRequest := h.upstream.RequestSelfIntroFeedback(ctx, upstreamToken(c), subject, content)
	if errRequest != nil {
		writeError(c, errRequest, "request self intro feedback")
		return
	}
	row, errSave := h.store.SaveSelfIntroFeedback(ctx, getUserID(c), result.Subject, result.Content, result.Feedback)
	if errSave != nil {
		writeError(c, errSave, "save self intro feedback")
		return
	}
	c.JSON(http.StatusCreated, selfIntroFeedbackDTO{
		ID:       int64(row.ID),
		Subject:  row.Subject,
		Content:  row.Content,
		Feedback: row.Feedback,
	})
}
