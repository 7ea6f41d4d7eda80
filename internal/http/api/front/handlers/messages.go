package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

// ListMessages returns the chat in conversation order.
func (h *CareerHandler) ListMessages(c *gin.Context) {
	rows, errList := h.store.ListMessages(c.Request.Context(), getUserID(c))
	if errList != nil {
		writeError(c, errList, "list messages")
		return
	}
	out := make([]messageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMessageDTO(row))
	}
	c.JSON(http.StatusOK, out)
}

// SendMessage asks the assistant and stores both sides of the exchange. Nothing
// is stored when the assistant fails.
func (h *CareerHandler) SendMessage(c *gin.Context) {
	var body sendMessageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil || strings.TrimSpace(body.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	userID := getUserID(c)
	answer, errChat := h.upstream.GenerateChat(c.Request.Context(), upstreamToken(c), userID, body.Content)
	if errChat != nil {
		writeError(c, errChat, "send message")
		return
	}
	reply, errAppend := h.store.AppendExchange(c.Request.Context(), userID, body.Content, answer)
	if errAppend != nil {
		writeError(c, errAppend, "store messages")
		return
	}
	c.JSON(http.StatusCreated, toMessageDTO(*reply))
}
