package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"authbot/internal/models"
)

const telegramCodeNamespace = "telegram_code"

type redisCodeRecord struct {
	UserID    int   `json:"user_id"`
	ExpiresAt int64 `json:"expires_at"` // unix nano
}

// RedisTelegramCodeRepository keeps codes as plain keys. Keys outlive the code's
// own expiry by retention so that a late redeem still sees the record and can
// report it as expired; after that Redis drops them on its own.
type RedisTelegramCodeRepository struct {
	client    redis.UniversalClient
	retention time.Duration
	now       func() time.Time
}

func NewRedisTelegramCodeRepository(client redis.UniversalClient, retention time.Duration) *RedisTelegramCodeRepository {
	return &RedisTelegramCodeRepository{client: client, retention: retention, now: time.Now}
}

func codeKey(code string) string {
	return telegramCodeNamespace + ":" + code
}

func (r *RedisTelegramCodeRepository) Create(ctx context.Context, code *models.LinkingCode) error {
	b, err := json.Marshal(redisCodeRecord{UserID: code.UserID, ExpiresAt: code.ExpiresAt.UnixNano()})
	if err != nil {
		return err
	}
	keep := code.ExpiresAt.Sub(r.now()) + r.retention
	if keep <= 0 {
		keep = time.Second
	}
	ok, err := r.client.SetNX(ctx, codeKey(code.Code), b, keep).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrDuplicate
	}
	return nil
}

// Consume relies on GETDEL, which reads and removes the key atomically on the server.
func (r *RedisTelegramCodeRepository) Consume(ctx context.Context, code string) (*models.LinkingCode, error) {
	raw, err := r.client.GetDel(ctx, codeKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis getdel: %w", err)
	}
	var rec redisCodeRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("redis decode %s: %w", telegramCodeNamespace, err)
	}
	return &models.LinkingCode{
		Code:      code,
		UserID:    rec.UserID,
		ExpiresAt: time.Unix(0, rec.ExpiresAt),
	}, nil
}

// DeleteExpired is a no-op: key TTLs already bound how long expired codes live.
func (r *RedisTelegramCodeRepository) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
