// Package scheduler runs periodic housekeeping jobs on a cron schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = time.Minute

// Compactor is satisfied by *services.CodeLedger.
type Compactor interface {
	Compact(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{s: log.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		log:  log,
	}
}

// AddCompaction schedules c.Compact at schedule ("@every 15m", "0 * * * *", ...).
func (s *Scheduler) AddCompaction(schedule string, c Compactor) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := c.Compact(ctx); err != nil {
			s.log.Error("[cron][compact] failed", zap.Error(err))
		}
	})
	return err
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents new runs and waits for a running job, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw("[cron] "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw("[cron] "+msg, append(keysAndValues, "error", err)...)
}
