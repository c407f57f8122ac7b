package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"authbot/internal/middleware"
	"authbot/internal/models"
)

type MessageSender interface {
	SendToUser(ctx context.Context, userID int, text string) error
}

type MessageHandler struct {
	sender MessageSender
}

func NewMessageHandler(sender MessageSender) *MessageHandler {
	return &MessageHandler{sender: sender}
}

// @Summary      Сообщение в привязанный чат
// @Tags         Telegram
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      models.SendMessageRequest  true  "Текст"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sender.SendToUser(c.Request.Context(), userID, req.Text); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sent"})
}
