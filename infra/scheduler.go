package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sessionCleanupSchedule = "@hourly"

type sessionCleaner interface {
	CleanExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionJanitor purges expired and revoked sessions on a cron schedule.
type SessionJanitor struct {
	sessions sessionCleaner
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

func NewSessionJanitor(sessions sessionCleaner, logger *zap.Logger) *SessionJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionJanitor{
		sessions: sessions,
		logger:   logger.Named("janitor"),
		cron:     cron.New(),
		now:      time.Now,
	}
}

func (j *SessionJanitor) Start() error {
	if _, err := j.cron.AddFunc(sessionCleanupSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.Error("session cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	j.cron.Start()
	j.logger.Info("session cleanup scheduled", zap.String("schedule", sessionCleanupSchedule))
	return nil
}

// Stop waits for a running cleanup to finish or ctx to expire.
func (j *SessionJanitor) Stop(ctx context.Context) {
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (j *SessionJanitor) RunOnce(ctx context.Context) (int64, error) {
	removed, err := j.sessions.CleanExpired(ctx, j.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		j.logger.Info("purged sessions", zap.Int64("count", removed))
	}
	return removed, nil
}
