package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// TokenHandler lets operators inspect and credit user balances.
type TokenHandler struct {
	engine *ledger.Engine
}

// NewTokenHandler constructs a TokenHandler.
func NewTokenHandler(engine *ledger.Engine) *TokenHandler {
	return &TokenHandler{engine: engine}
}

// creditRequest defines the request body for a manual credit.
type creditRequest struct {
	UserID uint64 `json:"user_id"`
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
}

type transactionResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Credit adds tokens to a user.
func (h *TokenHandler) Credit(c *gin.Context) {
	var body creditRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.UserID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		title = "관리자 지급"
	}

	receipt, errCredit := h.engine.Credit(c.Request.Context(), body.UserID, title, body.Amount)
	if errCredit != nil {
		writeLedgerError(c, errCredit)
		return
	}
	log.WithFields(log.Fields{
		"admin":   c.GetString("adminUsername"),
		"user_id": body.UserID,
		"amount":  body.Amount,
	}).Info("admin credited tokens")
	c.JSON(http.StatusOK, gin.H{
		"balance":     receipt.NewBalance,
		"transaction": toTransactionResponse(receipt.Transaction),
	})
}

// Get returns a user's balance and history.
func (h *TokenHandler) Get(c *gin.Context) {
	userID, errParse := strconv.ParseUint(c.Param("userID"), 10, 64)
	if errParse != nil || userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	ctx := c.Request.Context()
	balance, errBalance := h.engine.Balance(ctx, userID)
	if errBalance != nil {
		writeLedgerError(c, errBalance)
		return
	}
	history, errHistory := h.engine.History(ctx, userID)
	if errHistory != nil {
		writeLedgerError(c, errHistory)
		return
	}
	items := make([]transactionResponse, 0, len(history))
	for _, tx := range history {
		items = append(items, toTransactionResponse(tx))
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"balance": balance,
		"history": items,
	})
}

func toTransactionResponse(tx ledger.Transaction) transactionResponse {
	return transactionResponse{ID: tx.ID, Title: tx.Title, Amount: tx.Amount, CreatedAt: tx.CreatedAt}
}

func writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrStorageUnavailable):
		log.WithError(err).Error("admin ledger access failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	default:
		log.WithError(err).Error("admin ledger access failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger access failed"})
	}
}
