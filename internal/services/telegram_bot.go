package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"authbot/internal/metrics"
)

const ChannelTelegram = "telegram"

// Notifier delivers a text to a linked channel address.
type Notifier interface {
	Notify(ctx context.Context, channelAddress, text string) error
}

// botAPI is the subset of *tgbotapi.BotAPI we call.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type TelegramService struct {
	bot botAPI
	log *zap.Logger
}

// NewTelegramService connects to the Bot API (getMe) with the given token.
func NewTelegramService(botToken string, log *zap.Logger) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return NewTelegramServiceWithBot(bot, log), nil
}

func NewTelegramServiceWithBot(bot botAPI, log *zap.Logger) *TelegramService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TelegramService{bot: bot, log: log}
}

// Notify sends text to the chat whose id is channelAddress. Any failure is a *NotificationError.
func (t *TelegramService) Notify(_ context.Context, channelAddress, text string) error {
	chatID, err := strconv.ParseInt(channelAddress, 10, 64)
	if err != nil || chatID == 0 {
		metrics.Notifications.WithLabelValues(ChannelTelegram, metrics.ResultError).Inc()
		return &NotificationError{Channel: ChannelTelegram, Err: fmt.Errorf("bad chat id %q", channelAddress)}
	}
	if err := t.SendMessage(chatID, text); err != nil {
		metrics.Notifications.WithLabelValues(ChannelTelegram, metrics.ResultError).Inc()
		return &NotificationError{Channel: ChannelTelegram, Err: err}
	}
	metrics.Notifications.WithLabelValues(ChannelTelegram, metrics.ResultOK).Inc()
	return nil
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	t.log.Debug("[tg][send]", zap.Int64("chat_id", chatID), zap.Int("text_len", len(text)))
	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("[tg][send][err]", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

// SendReplyKeyboard sends text with a persistent reply keyboard (buttons under the input field).
func (t *TelegramService) SendReplyKeyboard(chatID int64, text string, keyboard [][]string) error {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = kb

	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("[tg][send+kb][err]", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

func (t *TelegramService) SetWebhook(url string) error {
	if url == "" {
		return nil
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("telegram webhook config: %w", err)
	}
	if _, err := t.bot.Request(wh); err != nil {
		return fmt.Errorf("telegram setWebhook: %w", err)
	}
	t.log.Info("[tg][setWebhook] registered", zap.String("url", url))
	return nil
}

var errNotifierDisabled = errors.New("telegram bot token not configured")

// LogNotifier is used when no bot token is configured. Nothing is delivered,
// so every call fails with a *NotificationError.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, channelAddress, text string) error {
	if n.Log != nil {
		n.Log.Warn("[tg][skip] bot token not configured", zap.String("channel", channelAddress), zap.Int("text_len", len(text)))
	}
	metrics.Notifications.WithLabelValues(ChannelTelegram, metrics.ResultError).Inc()
	return &NotificationError{Channel: ChannelTelegram, Err: errNotifierDisabled}
}
