package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog-comment-bot/internal/domain"
)

// BusinessMetricsCollector refreshes the pipeline gauges periodically
type BusinessMetricsCollector struct {
	db       *gorm.DB
	metrics  *Metrics
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
}

// NewBusinessMetricsCollector creates a new collector
func NewBusinessMetricsCollector(db *gorm.DB, metrics *Metrics, logger *zap.Logger) *BusinessMetricsCollector {
	return &BusinessMetricsCollector{
		db:       db,
		metrics:  metrics,
		logger:   logger,
		interval: 60 * time.Second,
		done:     make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *BusinessMetricsCollector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.Collect(context.Background())
		for {
			select {
			case <-ticker.C:
				c.Collect(context.Background())
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *BusinessMetricsCollector) Stop() {
	close(c.done)
}

// Collect gathers the gauges once. Counts go through the models so the
// configured table prefix applies.
func (c *BusinessMetricsCollector) Collect(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var pending int64
	if err := c.db.WithContext(ctx).Model(&domain.ScheduledJob{}).
		Where("status = ?", domain.JobStatusPending).Count(&pending).Error; err != nil {
		c.logger.Error("Failed to count pending jobs", zap.Error(err))
	} else {
		c.metrics.SetPendingJobs(pending)
	}

	var approved int64
	if err := c.db.WithContext(ctx).Model(&domain.Comment{}).
		Where("status = ?", domain.CommentStatusApproved).Count(&approved).Error; err != nil {
		c.logger.Error("Failed to count approved comments", zap.Error(err))
	} else {
		c.metrics.SetApprovedComments(approved)
	}

	var personas int64
	if err := c.db.WithContext(ctx).Model(&domain.BotPersona{}).
		Where("is_active = ?", true).Count(&personas).Error; err != nil {
		c.logger.Error("Failed to count active personas", zap.Error(err))
	} else {
		c.metrics.SetActivePersonas(personas)
	}
}
