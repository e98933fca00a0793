package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blog-comment-bot/internal/domain"
)

// JobRepository defines the interface for scheduled job data access.
// Claim, Complete and Release are conditional single-row updates; the bool
// result reports whether this caller won the transition.
type JobRepository interface {
	Create(ctx context.Context, job *domain.ScheduledJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledJob, error)
	FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledJob, error)
	Claim(ctx context.Context, id uuid.UUID, owner string, now, leaseUntil time.Time) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, owner string, executedAt time.Time) (bool, error)
	Release(ctx context.Context, id uuid.UUID, owner string, reason string) error
	List(ctx context.Context, status domain.JobStatus, page, limit int) ([]*domain.ScheduledJob, int64, error)
	CountByStatus(ctx context.Context, status domain.JobStatus) (int64, error)
}

// jobRepositoryImpl is the GORM implementation of JobRepository
type jobRepositoryImpl struct {
	db *gorm.DB
}

// NewJobRepository creates a new instance of JobRepository
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepositoryImpl{db: db}
}

// Create inserts a new job
func (r *jobRepositoryImpl) Create(ctx context.Context, job *domain.ScheduledJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// FindByID finds a job by its ID
func (r *jobRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.ScheduledJob, error) {
	var job domain.ScheduledJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindDue returns claimable jobs ordered by execution time: pending jobs whose
// time has come, and running jobs whose lease has lapsed.
func (r *jobRepositoryImpl) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.ScheduledJob, error) {
	var jobs []*domain.ScheduledJob
	query := r.db.WithContext(ctx).
		Where("(status = ? AND execution_time <= ?) OR (status = ? AND lease_expires_at < ?)",
			domain.JobStatusPending, now, domain.JobStatusRunning, now).
		Order("execution_time ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Claim marks the job running under owner's lease if it is still claimable
func (r *jobRepositoryImpl) Claim(ctx context.Context, id uuid.UUID, owner string, now, leaseUntil time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ScheduledJob{}).
		Where("id = ?", id).
		Where("(status = ? AND execution_time <= ?) OR (status = ? AND lease_expires_at < ?)",
			domain.JobStatusPending, now, domain.JobStatusRunning, now).
		Updates(map[string]interface{}{
			"status":           domain.JobStatusRunning,
			"lease_owner":      owner,
			"lease_expires_at": leaseUntil,
			"attempts":         gorm.Expr("attempts + ?", 1),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Complete finishes a job the caller still holds
func (r *jobRepositoryImpl) Complete(ctx context.Context, id uuid.UUID, owner string, executedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.ScheduledJob{}).
		Where("id = ? AND status = ? AND lease_owner = ?", id, domain.JobStatusRunning, owner).
		Updates(map[string]interface{}{
			"status":           domain.JobStatusCompleted,
			"executed_at":      executedAt,
			"lease_owner":      nil,
			"lease_expires_at": nil,
			"last_error":       nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Release returns a job the caller holds to pending, keeping its execution time
func (r *jobRepositoryImpl) Release(ctx context.Context, id uuid.UUID, owner string, reason string) error {
	return r.db.WithContext(ctx).
		Model(&domain.ScheduledJob{}).
		Where("id = ? AND status = ? AND lease_owner = ?", id, domain.JobStatusRunning, owner).
		Updates(map[string]interface{}{
			"status":           domain.JobStatusPending,
			"lease_owner":      nil,
			"lease_expires_at": nil,
			"last_error":       reason,
		}).Error
}

// List returns a page of jobs, soonest execution first
func (r *jobRepositoryImpl) List(ctx context.Context, status domain.JobStatus, page, limit int) ([]*domain.ScheduledJob, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.ScheduledJob{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []*domain.ScheduledJob
	if err := query.
		Order("execution_time ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// CountByStatus counts jobs in a status
func (r *jobRepositoryImpl) CountByStatus(ctx context.Context, status domain.JobStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.ScheduledJob{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
