package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authbot/internal/models"
)

func TestMessageService_SendToUser(t *testing.T) {
	users := newFakeUserRepo()
	addr := "555"
	users.add(models.User{ID: 1, Name: "Linked", ChannelAddress: &addr})
	users.add(models.User{ID: 2, Name: "Unlinked"})
	n := &recordingNotifier{}
	svc := NewMessageService(users, n, nil)
	ctx := context.Background()

	require.NoError(t, svc.SendToUser(ctx, 1, "ping"))
	assert.Equal(t, []string{"555|ping"}, n.calls)

	assert.ErrorIs(t, svc.SendToUser(ctx, 2, "ping"), ErrNoChannel)
	assert.ErrorIs(t, svc.SendToUser(ctx, 3, "ping"), ErrAccountNotFound)

	users.err = errBoom
	assert.ErrorIs(t, svc.SendToUser(ctx, 1, "ping"), ErrStorage)
}

func TestMessageService_NotifyWrapsErrors(t *testing.T) {
	svc := NewMessageService(newFakeUserRepo(), &recordingNotifier{err: errBoom}, nil)

	err := svc.Notify(context.Background(), "555", "hi")
	assert.ErrorIs(t, err, ErrNotification)
	assert.ErrorIs(t, err, errBoom)
}

func TestMessageService_NoBotConfigured(t *testing.T) {
	users := newFakeUserRepo()
	addr := "555"
	users.add(models.User{ID: 1, Name: "Linked", ChannelAddress: &addr})
	svc := NewMessageService(users, LogNotifier{}, nil)

	err := svc.SendToUser(context.Background(), 1, "hi")
	assert.ErrorIs(t, err, ErrNotification)

	var nerr *NotificationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, ChannelTelegram, nerr.Channel)
}

func TestLinkedGreeting(t *testing.T) {
	got := LinkedGreeting(&models.Summary{Name: "<b>Bob</b>"})
	assert.Equal(t, "Аутентификация успешна! Пользователь: &lt;b&gt;Bob&lt;/b&gt;", got)
}
