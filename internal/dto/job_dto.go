package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"blog-comment-bot/internal/domain"
)

// EnqueueRequest is the new-post webhook payload
type EnqueueRequest struct {
	PostID    string `json:"post_id"`
	PostIDAlt string `json:"postId"`
	URL       string `json:"url"`
}

// Normalize folds the alias fields into the canonical ones
func (r *EnqueueRequest) Normalize() {
	r.PostID = strings.Trim(strings.TrimSpace(firstNonEmpty(r.PostID, r.PostIDAlt)), "/")
	r.URL = strings.TrimSpace(r.URL)
}

// EnqueueResponse reports the scheduled job and the delay drawn for it
type EnqueueResponse struct {
	JobID         uuid.UUID `json:"job_id"`
	PostID        string    `json:"post_id"`
	DelayMinutes  int       `json:"delay_minutes"`
	ExecutionTime time.Time `json:"execution_time"`
}

// Sweep outcomes per job
const (
	SweepStatusSuccess = "success"
	SweepStatusFailed  = "failed"
	SweepStatusSkipped = "skipped"
)

// SweepJobResult is the outcome of one due job
type SweepJobResult struct {
	JobID     uuid.UUID  `json:"job_id"`
	PostID    string     `json:"post_id"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	Stage     string     `json:"stage,omitempty"`
	CommentID *uuid.UUID `json:"comment_id,omitempty"`
}

// SweepReport aggregates one pass over due jobs
type SweepReport struct {
	ProcessedCount int              `json:"processed_count"`
	FailedCount    int              `json:"failed_count"`
	SkippedCount   int              `json:"skipped_count"`
	LockHeld       bool             `json:"lock_held,omitempty"`
	Results        []SweepJobResult `json:"results"`
	StartedAt      time.Time        `json:"started_at"`
	FinishedAt     time.Time        `json:"finished_at"`
}

// JobResponse represents a scheduled job
type JobResponse struct {
	ID            uuid.UUID  `json:"id"`
	PostID        string     `json:"post_id"`
	TargetURL     string     `json:"target_url"`
	ExecutionTime time.Time  `json:"execution_time"`
	Status        string     `json:"status"`
	DelayMinutes  int        `json:"delay_minutes"`
	Attempts      int        `json:"attempts"`
	LastError     *string    `json:"last_error,omitempty"`
	ExecutedAt    *time.Time `json:"executed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewJobResponse converts a domain job
func NewJobResponse(j *domain.ScheduledJob) *JobResponse {
	return &JobResponse{
		ID:            j.ID,
		PostID:        j.PostID,
		TargetURL:     j.TargetURL,
		ExecutionTime: j.ExecutionTime,
		Status:        string(j.Status),
		DelayMinutes:  j.DelayMinutes,
		Attempts:      j.Attempts,
		LastError:     j.LastError,
		ExecutedAt:    j.ExecutedAt,
		CreatedAt:     j.CreatedAt,
	}
}

// JobListResponse is a page of jobs
type JobListResponse struct {
	Jobs  []*JobResponse `json:"jobs"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
