package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/careerhub/careerhub/internal/session"
	"github.com/careerhub/careerhub/internal/upstream"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// User-facing ledger messages.
const (
	msgServiceNotFound     = "서비스를 찾을 수 없습니다"
	msgInsufficientBalance = "토큰이 부족합니다. 충전이 필요합니다"
	msgStorageUnavailable  = "잠시 후 다시 시도해주세요"
)

// Upstream is the AI/auth backend used by the handlers.
type Upstream interface {
	SignUp(ctx context.Context, req upstream.SignUpRequest) error
	CheckEmail(ctx context.Context, email string) (bool, error)
	Login(ctx context.Context, userID, password string) (upstream.LoginResult, error)
	SummarizeExperience(ctx context.Context, token string, in upstream.ExperienceInput) (upstream.ExperienceSummary, error)
	ListSelfIntroFeedback(ctx context.Context, token string) ([]upstream.SelfIntroFeedback, error)
	RequestSelfIntroFeedback(ctx context.Context, token, subject, content string) (upstream.SelfIntroFeedback, error)
	GenerateChat(ctx context.Context, token string, userID uint64, message string) (string, error)
	SearchProfiles(ctx context.Context, token, selfIntroduction string) ([]upstream.ProfileMatch, error)
	SearchExternalProfiles(ctx context.Context, token, selfIntroduction string) ([]upstream.ProfileMatch, error)
	GenerateClone(ctx context.Context, token string, userID uint64) (upstream.CloneProfile, error)
}

var _ Upstream = (*upstream.Client)(nil)

// getUserID extracts the user ID from gin context.
func getUserID(c *gin.Context) uint64 {
	val, exists := c.Get(session.ContextKeyUserID)
	if !exists {
		return 0
	}
	switch v := val.(type) {
	case uint64:
		return v
	case int64:
		return uint64(v)
	case uint:
		return uint64(v)
	case int:
		return uint64(v)
	default:
		return 0
	}
}

// upstreamToken returns the backend bearer token of the current session.
func upstreamToken(c *gin.Context) string {
	sess, ok := session.FromContext(c)
	if !ok {
		return ""
	}
	return sess.UpstreamToken
}

// parseIDParam reads a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(c.Param(name), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// writeError maps domain errors to status codes and JSON bodies.
func writeError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, ledger.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgServiceNotFound})
	case errors.Is(err, ledger.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": msgInsufficientBalance})
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrStorageUnavailable):
		log.WithError(err).Errorf("%s failed", action)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgStorageUnavailable})
	case errors.Is(err, career.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, career.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, career.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, career.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, upstream.ErrContractViolation), errors.Is(err, upstream.ErrUnavailable):
		log.WithError(err).Warnf("%s: upstream failed", action)
		c.JSON(http.StatusBadGateway, gin.H{"error": action + " failed"})
	default:
		log.WithError(err).Errorf("%s failed", action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed"})
	}
}
