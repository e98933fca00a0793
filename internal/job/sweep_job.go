package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"blog-comment-bot/internal/dto"
)

// Sweeper processes due scheduled jobs
type Sweeper interface {
	Sweep(ctx context.Context) (*dto.SweepReport, error)
}

// SweepJob runs one sweep per cron tick
type SweepJob struct {
	baseCtx context.Context
	sweeper Sweeper
	timeout time.Duration
	logger  *zap.Logger
}

// NewSweepJob creates a new SweepJob. Cancelling ctx stops an in-flight sweep
// between jobs.
func NewSweepJob(ctx context.Context, sweeper Sweeper, timeout time.Duration, logger *zap.Logger) *SweepJob {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SweepJob{
		baseCtx: ctx,
		sweeper: sweeper,
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes the sweep
func (j *SweepJob) Run() {
	if j.baseCtx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(j.baseCtx, j.timeout)
	defer cancel()

	j.logger.Debug("Starting scheduled sweep")

	report, err := j.sweeper.Sweep(ctx)
	if err != nil {
		j.logger.Error("Scheduled sweep failed", zap.Error(err))
		return
	}
	if report.LockHeld || len(report.Results) == 0 {
		return
	}

	j.logger.Info("Scheduled sweep completed",
		zap.Int("processed", report.ProcessedCount),
		zap.Int("failed", report.FailedCount),
		zap.Int("skipped", report.SkippedCount),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
}
