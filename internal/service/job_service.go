package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blog-comment-bot/internal/director"
	"blog-comment-bot/internal/domain"
	"blog-comment-bot/internal/dto"
	"blog-comment-bot/internal/metrics"
	"blog-comment-bot/internal/repository"
	"blog-comment-bot/internal/response"
)

const sweepLockKey = "comment-bot:sweep-lock"

// Locker guards a sweep across processes. Implementations may be absent.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error)
}

// JobServiceConfig tunes scheduling and sweeping
type JobServiceConfig struct {
	MinDelayMinutes int
	MaxDelayMinutes int
	LeaseDuration   time.Duration
	LockTTL         time.Duration
	BatchLimit      int
}

// JobService is the durable queue of delayed director runs
type JobService interface {
	Enqueue(ctx context.Context, req *dto.EnqueueRequest) (*dto.EnqueueResponse, error)
	Sweep(ctx context.Context) (*dto.SweepReport, error)
	ListJobs(ctx context.Context, status string, page, limit int) (*dto.JobListResponse, error)
}

// jobServiceImpl is the implementation of JobService
type jobServiceImpl struct {
	jobRepo  repository.JobRepository
	director director.Director
	locker   Locker
	cfg      JobServiceConfig
	logger   *zap.Logger
	metrics  *metrics.Metrics

	now      func() time.Time
	randIntN func(n int) int
}

// NewJobService creates a new instance of JobService. locker and m may be nil.
func NewJobService(
	jobRepo repository.JobRepository,
	dir director.Director,
	locker Locker,
	cfg JobServiceConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
) JobService {
	if cfg.MinDelayMinutes <= 0 {
		cfg.MinDelayMinutes = 1
	}
	if cfg.MaxDelayMinutes < cfg.MinDelayMinutes {
		cfg.MaxDelayMinutes = cfg.MinDelayMinutes
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = 10 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobServiceImpl{
		jobRepo:  jobRepo,
		director: dir,
		locker:   locker,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
		randIntN: rand.IntN,
	}
}

// Enqueue schedules one director run at a random delay. Repeated calls for
// the same post create independent jobs.
func (s *jobServiceImpl) Enqueue(ctx context.Context, req *dto.EnqueueRequest) (*dto.EnqueueResponse, error) {
	req.Normalize()
	if req.PostID == "" {
		return nil, response.NewAppError(response.ErrCodeMissingFields, "post_id is required", "")
	}

	delay := s.cfg.MinDelayMinutes + s.randIntN(s.cfg.MaxDelayMinutes-s.cfg.MinDelayMinutes+1)
	executionTime := s.now().Add(time.Duration(delay) * time.Minute)

	job := &domain.ScheduledJob{
		BaseModel:     domain.BaseModel{ID: uuid.New()},
		PostID:        req.PostID,
		TargetURL:     req.URL,
		ExecutionTime: executionTime,
		Status:        domain.JobStatusPending,
		DelayMinutes:  delay,
	}
	job.IdempotencyKey = domain.NewIdempotencyKey(job.ID, job.PostID, executionTime)

	if err := s.jobRepo.Create(ctx, job); err != nil {
		s.logger.Error("Failed to create scheduled job", zap.String("post_id", req.PostID), zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to schedule job", err.Error())
	}

	s.metrics.IncrementJobEnqueued()
	s.logger.Info("Scheduled director run",
		zap.String("job_id", job.ID.String()),
		zap.String("post_id", job.PostID),
		zap.Int("delay_minutes", delay),
		zap.Time("execution_time", executionTime),
	)

	return &dto.EnqueueResponse{
		JobID:         job.ID,
		PostID:        job.PostID,
		DelayMinutes:  delay,
		ExecutionTime: executionTime,
	}, nil
}

// Sweep processes due jobs one at a time, oldest first. Each job is claimed
// before the director runs, so overlapping sweeps never run the same job.
func (s *jobServiceImpl) Sweep(ctx context.Context) (*dto.SweepReport, error) {
	report := &dto.SweepReport{StartedAt: s.now(), Results: []dto.SweepJobResult{}}
	defer func() {
		report.FinishedAt = s.now()
		s.metrics.ObserveSweep(report.FinishedAt.Sub(report.StartedAt))
	}()

	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, sweepLockKey, s.cfg.LockTTL)
		switch {
		case err != nil:
			// the per-job claim still keeps runs exclusive
			s.logger.Warn("Sweep lock unavailable, continuing without it", zap.Error(err))
		case !ok:
			s.logger.Info("Sweep already running elsewhere, skipping")
			report.LockHeld = true
			return report, nil
		default:
			defer unlock()
		}
	}

	jobs, err := s.jobRepo.FindDue(ctx, report.StartedAt, s.cfg.BatchLimit)
	if err != nil {
		s.logger.Error("Failed to load due jobs", zap.Error(err))
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to load due jobs", err.Error())
	}

	owner := uuid.NewString()
	for _, job := range jobs {
		if ctx.Err() != nil {
			s.logger.Warn("Sweep cancelled, leaving remaining jobs pending", zap.Int("remaining", len(jobs)-len(report.Results)))
			break
		}

		result := s.processJob(ctx, job, owner)
		report.Results = append(report.Results, result)
		s.metrics.RecordJobOutcome(result.Status)
		switch result.Status {
		case dto.SweepStatusSuccess:
			report.ProcessedCount++
		case dto.SweepStatusFailed:
			report.FailedCount++
		case dto.SweepStatusSkipped:
			report.SkippedCount++
		}
	}

	s.logger.Info("Sweep finished",
		zap.Int("due", len(jobs)),
		zap.Int("processed", report.ProcessedCount),
		zap.Int("failed", report.FailedCount),
		zap.Int("skipped", report.SkippedCount),
	)
	return report, nil
}

func (s *jobServiceImpl) processJob(ctx context.Context, job *domain.ScheduledJob, owner string) dto.SweepJobResult {
	result := dto.SweepJobResult{JobID: job.ID, PostID: job.PostID}

	now := s.now()
	claimed, err := s.jobRepo.Claim(ctx, job.ID, owner, now, now.Add(s.cfg.LeaseDuration))
	if err != nil {
		s.logger.Error("Failed to claim job", zap.String("job_id", job.ID.String()), zap.Error(err))
		result.Status = dto.SweepStatusFailed
		result.Error = err.Error()
		return result
	}
	if !claimed {
		result.Status = dto.SweepStatusSkipped
		result.Error = "claimed by another worker"
		return result
	}

	run, err := s.director.Run(ctx, director.RunRequest{PostID: job.PostID, IdempotencyKey: job.IdempotencyKey})
	if err != nil {
		result.Status = dto.SweepStatusFailed
		result.Error = err.Error()
		var failure *director.Failure
		if errors.As(err, &failure) {
			result.Stage = string(failure.Stage)
		}
		// release even when the sweep context is already cancelled
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if releaseErr := s.jobRepo.Release(releaseCtx, job.ID, owner, err.Error()); releaseErr != nil {
			s.logger.Error("Failed to release job", zap.String("job_id", job.ID.String()), zap.Error(releaseErr))
		}
		return result
	}

	commentID := run.Comment.ID
	result.CommentID = &commentID

	completeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	completed, err := s.jobRepo.Complete(completeCtx, job.ID, owner, s.now())
	switch {
	case err != nil:
		s.logger.Error("Failed to complete job", zap.String("job_id", job.ID.String()), zap.Error(err))
		result.Status = dto.SweepStatusFailed
		result.Error = err.Error()
	case !completed:
		// lease lapsed mid-run; the next holder reuses the comment via the idempotency key
		s.logger.Warn("Lost job lease before completion", zap.String("job_id", job.ID.String()))
		result.Status = dto.SweepStatusSkipped
		result.Error = "lease lost before completion"
	default:
		result.Status = dto.SweepStatusSuccess
	}
	return result
}

// ListJobs returns a page of jobs, optionally filtered by status
func (s *jobServiceImpl) ListJobs(ctx context.Context, status string, page, limit int) (*dto.JobListResponse, error) {
	switch domain.JobStatus(status) {
	case "", domain.JobStatusPending, domain.JobStatusRunning, domain.JobStatusCompleted:
	default:
		return nil, response.NewAppError(response.ErrCodeValidation, "Invalid job status", status)
	}
	page, limit = normalizePage(page, limit)

	jobs, total, err := s.jobRepo.List(ctx, domain.JobStatus(status), page, limit)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to list jobs", err.Error())
	}

	resp := &dto.JobListResponse{Jobs: make([]*dto.JobResponse, 0, len(jobs)), Total: total, Page: page, Limit: limit}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, dto.NewJobResponse(j))
	}
	return resp, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
