package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a scheduled job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
)

// ScheduledJob is a deferred request to run the director for one post.
// A running job holds a lease; an expired lease makes the job claimable again.
type ScheduledJob struct {
	BaseModel
	PostID         string     `gorm:"type:varchar(255);not null;index" json:"post_id"`
	TargetURL      string     `gorm:"type:text" json:"target_url"`
	ExecutionTime  time.Time  `gorm:"not null;index" json:"execution_time"`
	Status         JobStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DelayMinutes   int        `gorm:"not null;default:0" json:"delay_minutes"`
	Attempts       int        `gorm:"not null;default:0" json:"attempts"`
	LastError      *string    `gorm:"type:text" json:"last_error,omitempty"`
	LeaseOwner     *string    `gorm:"type:varchar(100)" json:"lease_owner,omitempty"`
	LeaseExpiresAt *time.Time `json:"lease_expires_at,omitempty"`
	IdempotencyKey string     `gorm:"type:varchar(128);not null;uniqueIndex" json:"idempotency_key"`
	ExecutedAt     *time.Time `json:"executed_at,omitempty"`
}

// NewIdempotencyKey derives a stable key for a job from its identity
func NewIdempotencyKey(jobID uuid.UUID, postID string, executionTime time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", postID, jobID, executionTime.Unix())))
	return hex.EncodeToString(sum[:])
}
