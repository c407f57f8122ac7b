package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"authbot/internal/metrics"
	"authbot/internal/models"
	"authbot/internal/repositories"
)

// CodeRedeemer is the part of the ledger the linker depends on.
type CodeRedeemer interface {
	Redeem(ctx context.Context, code string) (int, error)
}

// AccountLinker binds a Telegram chat to the account that owns a redeemed code.
// It is the only writer of users.channel_address.
type AccountLinker struct {
	codes CodeRedeemer
	users repositories.UserRepository
	log   *zap.Logger
}

func NewAccountLinker(codes CodeRedeemer, users repositories.UserRepository, log *zap.Logger) *AccountLinker {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountLinker{codes: codes, users: users, log: log}
}

// Link redeems code and sets the owner's channel address, replacing any
// previous one. The code is spent even if the owner has disappeared since.
func (l *AccountLinker) Link(ctx context.Context, code, channelAddress string) (*models.Summary, error) {
	channelAddress = strings.TrimSpace(channelAddress)
	if channelAddress == "" {
		return nil, fmt.Errorf("%w: channel address is required", ErrInvalidInput)
	}

	userID, err := l.codes.Redeem(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			metrics.Links.WithLabelValues(metrics.ResultNotFound).Inc()
		case errors.Is(err, ErrExpired):
			metrics.Links.WithLabelValues(metrics.ResultExpired).Inc()
		default:
			metrics.Links.WithLabelValues(metrics.ResultError).Inc()
		}
		return nil, err
	}

	u, err := l.users.SetChannelAddress(ctx, userID, channelAddress)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.Links.WithLabelValues(metrics.ResultNoAcct).Inc()
			l.log.Warn("[linker] code owner no longer exists", zap.Int("user_id", userID))
			return nil, ErrAccountNotFound
		}
		metrics.Links.WithLabelValues(metrics.ResultError).Inc()
		l.log.Error("[linker] set channel failed", zap.Int("user_id", userID), zap.Error(err))
		return nil, storageErr("set channel address", err)
	}

	metrics.Links.WithLabelValues(metrics.ResultOK).Inc()
	l.log.Info("[linker] account linked", zap.Int("user_id", u.ID), zap.String("channel", channelAddress))
	s := u.Summary()
	return &s, nil
}
