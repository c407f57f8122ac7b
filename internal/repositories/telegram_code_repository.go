package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"authbot/internal/models"
)

// TelegramCodeRepository stores one-time linking codes.
//
// Consume must remove and return the record in a single atomic step: of any
// number of concurrent Consume calls for the same code at most one gets the
// record, the rest get ErrNotFound. Expiry is not checked here.
type TelegramCodeRepository interface {
	Create(ctx context.Context, code *models.LinkingCode) error
	Consume(ctx context.Context, code string) (*models.LinkingCode, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type telegramCodeRepository struct{ db *sql.DB }

func NewTelegramCodeRepository(db *sql.DB) TelegramCodeRepository {
	return &telegramCodeRepository{db: db}
}

func (r *telegramCodeRepository) Create(ctx context.Context, code *models.LinkingCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO telegram_codes (code, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, code.Code, code.UserID, code.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("telegram_codes create: %w", err)
	}
	return nil
}

func (r *telegramCodeRepository) Consume(ctx context.Context, code string) (*models.LinkingCode, error) {
	l := models.LinkingCode{Code: code}
	err := r.db.QueryRowContext(ctx, `
		DELETE FROM telegram_codes
		WHERE code = $1
		RETURNING user_id, expires_at
	`, code).Scan(&l.UserID, &l.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("telegram_codes consume: %w", err)
	}
	return &l, nil
}

func (r *telegramCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM telegram_codes WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("telegram_codes delete expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("telegram_codes delete expired: %w", err)
	}
	return n, nil
}
