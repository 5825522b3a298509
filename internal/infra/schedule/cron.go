package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	appschedule "riide/internal/app/schedule"
)

// CronScheduler runs jobs on robfig/cron. Runs of the same job never overlap, and a job
// that panics is recovered and logged.
type CronScheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// NewCronScheduler evaluates specs in loc. Each run gets a context bounded by timeout
// (no bound when timeout <= 0).
func NewCronScheduler(loc *time.Location, timeout time.Duration, logger *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
	)
	return &CronScheduler{cron: c, logger: logger, timeout: timeout}
}

func (s *CronScheduler) Register(job appschedule.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	_, err := s.cron.AddFunc(job.Spec, s.wrap(job))
	if err != nil {
		return fmt.Errorf("schedule: register %s: %w", job.Name, err)
	}
	s.logger.Info("job registered", "job", job.Name, "spec", job.Spec)
	return nil
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

func (s *CronScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CronScheduler) wrap(job appschedule.Job) func() {
	return func() {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		started := time.Now()
		if err := job.Run(ctx); err != nil {
			s.logger.Error("job failed", "job", job.Name, "error", err, "duration_ms", time.Since(started).Milliseconds())
			return
		}
		s.logger.Debug("job finished", "job", job.Name, "duration_ms", time.Since(started).Milliseconds())
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

var _ appschedule.Scheduler = (*CronScheduler)(nil)
