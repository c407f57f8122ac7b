package repositories

import (
	"context"
	"sync"
	"time"

	"authbot/internal/models"
)

// MemoryTelegramCodeRepository хранит коды в памяти процесса (dev / тесты).
type MemoryTelegramCodeRepository struct {
	mu    sync.Mutex
	codes map[string]models.LinkingCode
}

func NewMemoryTelegramCodeRepository() *MemoryTelegramCodeRepository {
	return &MemoryTelegramCodeRepository{codes: make(map[string]models.LinkingCode)}
}

func (r *MemoryTelegramCodeRepository) Create(_ context.Context, code *models.LinkingCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.codes[code.Code]; ok {
		return ErrDuplicate
	}
	r.codes[code.Code] = *code
	return nil
}

func (r *MemoryTelegramCodeRepository) Consume(_ context.Context, code string) (*models.LinkingCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.codes[code]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.codes, code)
	return &stored, nil
}

func (r *MemoryTelegramCodeRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, c := range r.codes {
		if c.ExpiresAt.Before(before) {
			delete(r.codes, k)
			n++
		}
	}
	return n, nil
}

func (r *MemoryTelegramCodeRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.codes)
}
