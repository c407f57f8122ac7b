package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authbot/internal/models"
)

func newCodeRepoWithMock(t *testing.T) (TelegramCodeRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTelegramCodeRepository(db), mock
}

const (
	insertCodeQ  = `(?s)INSERT INTO telegram_codes \(code, user_id, expires_at\)\s+VALUES \(\$1, \$2, \$3\)`
	consumeCodeQ = `(?s)DELETE FROM telegram_codes\s+WHERE code = \$1\s+RETURNING user_id, expires_at`
	purgeCodesQ  = `DELETE FROM telegram_codes WHERE expires_at < \$1`
)

func TestTelegramCodeCreate_OK(t *testing.T) {
	repo, mock := newCodeRepoWithMock(t)
	exp := time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC)

	mock.ExpectExec(insertCodeQ).
		WithArgs("abc123", 42, exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.LinkingCode{Code: "abc123", UserID: 42, ExpiresAt: exp})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTelegramCodeCreate_Duplicate(t *testing.T) {
	repo, mock := newCodeRepoWithMock(t)

	mock.ExpectExec(insertCodeQ).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.LinkingCode{Code: "abc123", UserID: 42, ExpiresAt: time.Now()})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestTelegramCodeCreate_DBError(t *testing.T) {
	repo, mock := newCodeRepoWithMock(t)

	mock.ExpectExec(insertCodeQ).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.LinkingCode{Code: "abc123", UserID: 42, ExpiresAt: time.Now()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "db down")
}

func TestTelegramCodeConsume_Found(t *testing.T) {
	repo, mock := newCodeRepoWithMock(t)
	exp := time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC)

	mock.ExpectQuery(consumeCodeQ).
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow(42, exp))

	got, err := repo.Consume(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.Code)
	assert.Equal(t, 42, got.UserID)
	assert.True(t, exp.Equal(got.ExpiresAt))
}

func TestTelegramCodeConsume_Missing(t *testing.T) {
	repo, mock := newCodeRepoWithMock(t)

	mock.ExpectQuery(consumeCodeQ).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTelegramCodeConsume_DBError(t *testing.T) {
	repo, mock := newCodeRepoWithMock(t)

	mock.ExpectQuery(consumeCodeQ).WithArgs("abc123").WillReturnError(errors.New("conn reset"))

	_, err := repo.Consume(context.Background(), "abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestTelegramCodeDeleteExpired(t *testing.T) {
	repo, mock := newCodeRepoWithMock(t)
	before := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(purgeCodesQ).WithArgs(before).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
