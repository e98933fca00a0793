package job

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler triggers registered jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates a scheduler. A job still running when its next tick
// fires is skipped for that tick, and a panicking job is logged and recovered.
func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// Register adds a job under a cron spec such as "@every 5m" or "*/5 * * * *"
func (s *Scheduler) Register(name, spec string, job cron.Job) error {
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("register %s job with spec %q: %w", name, spec, err)
	}
	s.logger.Info("Registered cron job", zap.String("job", name), zap.String("spec", spec))
	return nil
}

// Start begins scheduling in the background
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
