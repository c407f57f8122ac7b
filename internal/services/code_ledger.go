package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"authbot/internal/metrics"
	"authbot/internal/models"
	"authbot/internal/repositories"
	"authbot/internal/utils"
)

const (
	DefaultCodeTTL          = time.Hour
	defaultMaxIssueAttempts = 5
)

// CodeLedger issues one-time linking codes and redeems each of them at most once.
//
// A code is Issued until it is either redeemed (the record is removed and the
// owner returned) or read after its expiry (the record is removed and ErrExpired
// returned). Expiry is checked lazily on redeem; Compact only purges codes that
// have been dead for longer than the retention window.
type CodeLedger struct {
	repo        repositories.TelegramCodeRepository
	ttl         time.Duration
	retention   time.Duration
	maxAttempts int
	log         *zap.Logger

	clock   func() time.Time
	newCode func() (string, error)
}

type LedgerOption func(*CodeLedger)

func WithClock(clock func() time.Time) LedgerOption {
	return func(l *CodeLedger) { l.clock = clock }
}

func WithCodeGenerator(gen func() (string, error)) LedgerOption {
	return func(l *CodeLedger) { l.newCode = gen }
}

func WithMaxIssueAttempts(n int) LedgerOption {
	return func(l *CodeLedger) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

func WithRetention(d time.Duration) LedgerOption {
	return func(l *CodeLedger) { l.retention = d }
}

func NewCodeLedger(repo repositories.TelegramCodeRepository, ttl time.Duration, log *zap.Logger, opts ...LedgerOption) *CodeLedger {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	l := &CodeLedger{
		repo:        repo,
		ttl:         ttl,
		maxAttempts: defaultMaxIssueAttempts,
		log:         log,
		clock:       time.Now,
		newCode:     utils.NewLinkCode,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *CodeLedger) TTL() time.Duration { return l.ttl }

// Issue creates and stores a fresh code for userID. Collisions with an
// existing code are regenerated up to maxAttempts times.
func (l *CodeLedger) Issue(ctx context.Context, userID int) (*models.LinkingCode, error) {
	var lastErr error
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		code, err := l.newCode()
		if err != nil {
			return nil, storageErr("generate code", err)
		}
		lc := &models.LinkingCode{
			Code:      code,
			UserID:    userID,
			ExpiresAt: l.clock().Add(l.ttl),
		}
		err = l.repo.Create(ctx, lc)
		if err == nil {
			metrics.CodesIssued.Inc()
			l.log.Info("[ledger][issue] code issued",
				zap.Int("user_id", userID),
				zap.String("code_prefix", prefix(code)),
				zap.Time("expires_at", lc.ExpiresAt))
			return lc, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			l.log.Error("[ledger][issue] store failed", zap.Int("user_id", userID), zap.Error(err))
			return nil, storageErr("store code", err)
		}
		metrics.IssueCollisions.Inc()
		l.log.Warn("[ledger][issue] code collision, regenerating", zap.Int("attempt", attempt))
		lastErr = err
	}
	return nil, storageErr("store code", lastErr)
}

// Redeem consumes code and returns its owner. ErrNotFound when no such code
// exists (including one already redeemed), ErrExpired when it was past expiry.
func (l *CodeLedger) Redeem(ctx context.Context, code string) (int, error) {
	lc, err := l.repo.Consume(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.CodesRedeemed.WithLabelValues(metrics.ResultNotFound).Inc()
			return 0, ErrNotFound
		}
		metrics.CodesRedeemed.WithLabelValues(metrics.ResultError).Inc()
		l.log.Error("[ledger][redeem] consume failed", zap.String("code_prefix", prefix(code)), zap.Error(err))
		return 0, storageErr("consume code", err)
	}
	if lc.Expired(l.clock()) {
		metrics.CodesRedeemed.WithLabelValues(metrics.ResultExpired).Inc()
		l.log.Info("[ledger][redeem] code expired",
			zap.Int("user_id", lc.UserID),
			zap.String("code_prefix", prefix(code)),
			zap.Time("expired_at", lc.ExpiresAt))
		return 0, ErrExpired
	}
	metrics.CodesRedeemed.WithLabelValues(metrics.ResultOK).Inc()
	l.log.Info("[ledger][redeem] code redeemed", zap.Int("user_id", lc.UserID), zap.String("code_prefix", prefix(code)))
	return lc.UserID, nil
}

// Compact removes codes that expired more than the retention window ago.
func (l *CodeLedger) Compact(ctx context.Context) (int64, error) {
	n, err := l.repo.DeleteExpired(ctx, l.clock().Add(-l.retention))
	if err != nil {
		l.log.Error("[ledger][compact] failed", zap.Error(err))
		return 0, storageErr("compact codes", err)
	}
	if n > 0 {
		metrics.CodesCompacted.Add(float64(n))
		l.log.Info("[ledger][compact] expired codes removed", zap.Int64("count", n))
	}
	return n, nil
}

func prefix(code string) string {
	if len(code) > 6 {
		return code[:6]
	}
	return code
}
