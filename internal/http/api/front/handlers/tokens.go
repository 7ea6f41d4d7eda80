package handlers

import (
	"net/http"
	"time"

	"github.com/careerhub/careerhub/internal/ledger"
	"github.com/gin-gonic/gin"
)

// TokenHandler serves the token ledger endpoints.
type TokenHandler struct {
	engine *ledger.Engine
}

// NewTokenHandler constructs a TokenHandler.
func NewTokenHandler(engine *ledger.Engine) *TokenHandler {
	return &TokenHandler{engine: engine}
}

// transactionDTO is one history entry as the client renders it.
type transactionDTO struct {
	ID     int64     `json:"id"`
	UserID uint64    `json:"userId"`
	Title  string    `json:"title"`
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
}

func toTransactionDTO(tx ledger.Transaction) transactionDTO {
	return transactionDTO{
		ID:     tx.ID,
		UserID: tx.UserID,
		Title:  tx.Title,
		Amount: tx.Amount,
		Date:   tx.CreatedAt,
	}
}

// useTokensRequest defines the request body for a redemption.
type useTokensRequest struct {
	ServiceID *int64 `json:"serviceId"`
}

// Balance returns the current balance.
func (h *TokenHandler) Balance(c *gin.Context) {
	balance, errBalance := h.engine.Balance(c.Request.Context(), getUserID(c))
	if errBalance != nil {
		writeError(c, errBalance, "load token balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": balance})
}

// History returns the transactions, most recent first.
func (h *TokenHandler) History(c *gin.Context) {
	history, errHistory := h.engine.History(c.Request.Context(), getUserID(c))
	if errHistory != nil {
		writeError(c, errHistory, "load token history")
		return
	}
	out := make([]transactionDTO, 0, len(history))
	for _, tx := range history {
		out = append(out, toTransactionDTO(tx))
	}
	c.JSON(http.StatusOK, out)
}

// Services lists the redeemable services in catalog order.
func (h *TokenHandler) Services(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Services())
}

// Use redeems a service against the balance.
func (h *TokenHandler) Use(c *gin.Context) {
	var body useTokensRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || body.ServiceID == nil || *body.ServiceID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid service ID is required"})
		return
	}
	receipt, errRedeem := h.engine.Redeem(c.Request.Context(), getUserID(c), *body.ServiceID)
	if errRedeem != nil {
		writeError(c, errRedeem, "use tokens")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"newBalance":  receipt.NewBalance,
		"transaction": toTransactionDTO(receipt.Transaction),
	})
}
