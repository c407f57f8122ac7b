package services

import (
	"context"
	"errors"
	"fmt"
	"html"

	"go.uber.org/zap"

	"authbot/internal/models"
	"authbot/internal/repositories"
)

// MessageService sends texts to an account's linked channel.
type MessageService struct {
	users    repositories.UserRepository
	notifier Notifier
	log      *zap.Logger
}

func NewMessageService(users repositories.UserRepository, notifier Notifier, log *zap.Logger) *MessageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessageService{users: users, notifier: notifier, log: log}
}

func (s *MessageService) SendToUser(ctx context.Context, userID int, text string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAccountNotFound
		}
		return storageErr("get user", err)
	}
	if u.ChannelAddress == nil || *u.ChannelAddress == "" {
		return ErrNoChannel
	}
	return s.Notify(ctx, *u.ChannelAddress, text)
}

// Notify wraps the notifier so that every failure reaches the caller as a *NotificationError.
func (s *MessageService) Notify(ctx context.Context, channelAddress, text string) error {
	err := s.notifier.Notify(ctx, channelAddress, text)
	if err == nil {
		return nil
	}
	s.log.Warn("[notify] delivery failed", zap.String("channel", channelAddress), zap.Error(err))
	var nerr *NotificationError
	if errors.As(err, &nerr) {
		return err
	}
	return &NotificationError{Channel: ChannelTelegram, Err: err}
}

// LinkedGreeting is the text sent to a chat right after it was bound to u.
func LinkedGreeting(u *models.Summary) string {
	return fmt.Sprintf("Аутентификация успешна! Пользователь: %s", html.EscapeString(u.Name))
}
