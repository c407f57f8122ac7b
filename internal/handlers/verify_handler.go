package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"authbot/internal/models"
	"authbot/internal/services"
)

type Linker interface {
	Link(ctx context.Context, code, channelAddress string) (*models.Summary, error)
}

type ChannelNotifier interface {
	Notify(ctx context.Context, channelAddress, text string) error
}

type VerifyHandler struct {
	linker   Linker
	notifier ChannelNotifier
	log      *zap.Logger
}

func NewVerifyHandler(linker Linker, notifier ChannelNotifier, log *zap.Logger) *VerifyHandler {
	return &VerifyHandler{linker: linker, notifier: notifier, log: log}
}

// @Summary      Подтверждение кода Telegram
// @Description  Погашает одноразовый код и привязывает чат к аккаунту, затем отправляет в чат уведомление
// @Tags         Telegram
// @Accept       json
// @Produce      json
// @Param        body  body      models.VerifyCodeRequest  true  "Код и chat id"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      410   {object}  map[string]string
// @Failure      502   {object}  map[string]interface{}
// @Router       /verify_telegram_code [post]
func (h *VerifyHandler) VerifyTelegramCode(c *gin.Context) {
	var req models.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address := strings.TrimSpace(req.ChannelAddress)
	user, err := h.linker.Link(c.Request.Context(), strings.TrimSpace(req.Code), address)
	if err != nil {
		writeError(c, err)
		return
	}

	greeting := services.LinkedGreeting(user)
	if err := h.notifier.Notify(c.Request.Context(), address, greeting); err != nil {
		// привязка уже сохранена, откатывать не нужно
		status, msg := statusFor(err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": msg, "linked": true, "user": user})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": greeting, "user": user})
}
