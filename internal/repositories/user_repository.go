package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"authbot/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Telegram
	SetChannelAddress(ctx context.Context, userID int, address string) (*models.User, error)
	GetByChannelAddress(ctx context.Context, address string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, email, password_hash, name, channel_address, linked_at, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var (
		channel  sql.NullString
		linkedAt sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &channel, &linkedAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if channel.Valid {
		s := channel.String
		u.ChannelAddress = &s
	}
	if linkedAt.Valid {
		t := linkedAt.Time
		u.LinkedAt = &t
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	const q = `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.DB.QueryRowContext(ctx, q, user.Email, user.PasswordHash, user.Name).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("users create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users get by id: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users get by email: %w", err)
	}
	return u, nil
}

func (r *userRepository) GetByChannelAddress(ctx context.Context, address string) (*models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE channel_address = $1 ORDER BY linked_at DESC LIMIT 1`, address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users get by channel: %w", err)
	}
	return u, nil
}

// SetChannelAddress overwrites the linked chat of an existing user in one statement,
// so a concurrently deleted user surfaces as ErrNotFound rather than a silent no-op.
func (r *userRepository) SetChannelAddress(ctx context.Context, userID int, address string) (*models.User, error) {
	const q = `
		UPDATE users
		SET channel_address = $1, linked_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns
	u, err := scanUser(r.DB.QueryRowContext(ctx, q, address, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users set channel: %w", err)
	}
	return u, nil
}
