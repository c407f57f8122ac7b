package handlers

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"authbot/internal/middleware"
	"authbot/internal/models"
	"authbot/internal/services"
	"authbot/internal/utils"
)

const btnMyAccount = "👤 Мой аккаунт"

// ChatReplier is satisfied by *services.TelegramService.
type ChatReplier interface {
	SendMessage(chatID int64, text string) error
	SendReplyKeyboard(chatID int64, text string, keyboard [][]string) error
}

type ChannelLookup interface {
	GetByChannelAddress(ctx context.Context, address string) (*models.User, error)
}

type CodeRequester interface {
	IssueCode(ctx context.Context, userID int) (*models.LinkingCode, error)
}

type IntegrationsHandler struct {
	TG          ChatReplier
	Linker      Linker
	Users       ChannelLookup
	Codes       CodeRequester
	BotUsername string
	log         *zap.Logger
}

func NewIntegrationsHandler(tg ChatReplier, linker Linker, users ChannelLookup, codes CodeRequester, botUsername string, log *zap.Logger) *IntegrationsHandler {
	return &IntegrationsHandler{TG: tg, Linker: linker, Users: users, Codes: codes, BotUsername: botUsername, log: log}
}

// Webhook принимает апдейты Telegram. Telegram всегда получает 200,
// иначе он будет повторять доставку того же апдейта.
func (h *IntegrationsHandler) Webhook(c *gin.Context) {
	var up tgbotapi.Update
	if err := c.ShouldBindJSON(&up); err != nil || up.Message == nil || up.Message.Chat == nil {
		if err != nil {
			h.log.Warn("[TG:WEBHOOK] bind json error", zap.Error(err))
		}
		c.Status(http.StatusOK)
		return
	}

	msg := up.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	h.log.Info("[TG:WEBHOOK] incoming", zap.Int64("chat_id", chatID), zap.String("command", msg.Command()))

	switch {
	case msg.IsCommand() && (msg.Command() == "start" || msg.Command() == "link"):
		raw := strings.TrimSpace(msg.CommandArguments())
		if raw == "" {
			_ = h.TG.SendReplyKeyboard(chatID,
				"Привет! Чтобы связать аккаунт, отправьте:\n<code>/link &lt;код&gt;</code>\nили откройте ссылку из ответа на вход.",
				[][]string{{btnMyAccount}},
			)
			break
		}
		h.linkChat(c.Request.Context(), chatID, raw)

	case text == btnMyAccount:
		h.sendAccount(c.Request.Context(), chatID)

	default:
		_ = h.TG.SendMessage(chatID, "Не понял команду. Используйте <code>/link &lt;код&gt;</code> или кнопку меню.")
	}

	c.Status(http.StatusOK)
}

func (h *IntegrationsHandler) linkChat(ctx context.Context, chatID int64, raw string) {
	code, ok := utils.NormalizeLinkCode(raw)
	if !ok {
		_ = h.TG.SendMessage(chatID, "Неверный формат кода. Отправьте ровно 32 символа HEX:\n<code>/link 0123456789abcdef0123456789abcdef</code>")
		return
	}

	user, err := h.Linker.Link(ctx, code, strconv.FormatInt(chatID, 10))
	switch {
	case err == nil:
		_ = h.TG.SendReplyKeyboard(chatID, services.LinkedGreeting(user), [][]string{{btnMyAccount}})
	case errors.Is(err, services.ErrExpired):
		_ = h.TG.SendMessage(chatID, "Код истёк. Войдите ещё раз, чтобы получить новый.")
	case errors.Is(err, services.ErrNotFound):
		_ = h.TG.SendMessage(chatID, "Код недействителен или уже использован.")
	case errors.Is(err, services.ErrAccountNotFound):
		_ = h.TG.SendMessage(chatID, "Аккаунт для этого кода больше не существует.")
	default:
		h.log.Error("[TG:WEBHOOK] link failed", zap.Int64("chat_id", chatID), zap.Error(err))
		_ = h.TG.SendMessage(chatID, "Не удалось привязать аккаунт, попробуйте позже.")
	}
}

func (h *IntegrationsHandler) sendAccount(ctx context.Context, chatID int64) {
	u, err := h.Users.GetByChannelAddress(ctx, strconv.FormatInt(chatID, 10))
	if err != nil || u == nil {
		_ = h.TG.SendMessage(chatID, "Этот чат не привязан. Привяжите аккаунт командой /link.")
		return
	}
	_ = h.TG.SendMessage(chatID, "Аккаунт: <b>"+html.EscapeString(u.Name)+"</b>\n"+html.EscapeString(u.Email))
}

// @Summary      Новый код привязки Telegram
// @Tags         Telegram
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /integrations/telegram/request-link [post]
func (h *IntegrationsHandler) RequestTelegramLink(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	code, err := h.Codes.IssueCode(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":          code.Code,
		"expires_at":    code.ExpiresAt,
		"telegram_link": utils.DeepLink(h.BotUsername, code.Code),
		"hint":          "Откройте чат с ботом и отправьте: /link " + code.Code,
	})
}
