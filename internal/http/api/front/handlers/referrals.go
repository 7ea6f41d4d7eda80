package handlers

import (
	"net/http"
	"time"

	"github.com/careerhub/careerhub/internal/career"
	"github.com/careerhub/careerhub/internal/models"
	"github.com/gin-gonic/gin"
)

// ReferralHandler serves referral code endpoints.
type ReferralHandler struct {
	store *career.Store
}

// NewReferralHandler constructs a ReferralHandler.
func NewReferralHandler(store *career.Store) *ReferralHandler {
	return &ReferralHandler{store: store}
}

type referralCodeDTO struct {
	Code      string    `json:"code"`
	UsedCount int       `json:"usedCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type referralDTO struct {
	ID           uint64     `json:"id"`
	Code         string     `json:"code"`
	ReferredID   uint64     `json:"referredId"`
	Status       string     `json:"status"`
	RewardAmount int64      `json:"rewardAmount"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

func toReferralDTO(row models.Referral) referralDTO {
	return referralDTO{
		ID:           row.ID,
		Code:         row.Code,
		ReferredID:   row.ReferredID,
		Status:       row.Status,
		RewardAmount: row.RewardAmount,
		CreatedAt:    row.CreatedAt,
		CompletedAt:  row.CompletedAt,
	}
}

type redeemReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

// Code returns the user's active code.
func (h *ReferralHandler) Code(c *gin.Context) {
	row, errCode := h.store.ReferralCode(c.Request.Context(), getUserID(c))
	if errCode != nil {
		writeError(c, errCode, "load referral code")
		return
	}
	c.JSON(http.StatusOK, referralCodeDTO{Code: row.Code, UsedCount: row.UsedCount, CreatedAt: row.CreatedAt})
}

// Generate replaces the user's code with a new one.
func (h *ReferralHandler) Generate(c *gin.Context) {
	row, errCode := h.store.RegenerateReferralCode(c.Request.Context(), getUserID(c))
	if errCode != nil {
		writeError(c, errCode, "generate referral code")
		return
	}
	c.JSON(http.StatusCreated, referralCodeDTO{Code: row.Code, UsedCount: row.UsedCount, CreatedAt: row.CreatedAt})
}

// List returns referrals made with the user's codes.
func (h *ReferralHandler) List(c *gin.Context) {
	rows, errList := h.store.ListReferrals(c.Request.Context(), getUserID(c))
	if errList != nil {
		writeError(c, errList, "list referrals")
		return
	}
	out := make([]referralDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toReferralDTO(row))
	}
	c.JSON(http.StatusOK, out)
}

// Redeem applies another user's code.
func (h *ReferralHandler) Redeem(c *gin.Context) {
	var body redeemReferralRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code is required"})
		return
	}
	row, errRedeem := h.store.RedeemReferral(c.Request.Context(), getUserID(c), body.Code)
	if errRedeem != nil {
		writeError(c, errRedeem, "redeem referral")
		return
	}
	c.JSON(http.StatusOK, toReferralDTO(*row))
}
