package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"blog-comment-bot/internal/domain"
)

// models lists every table owned by the service
func models() []interface{} {
	return []interface{}{
		&domain.Comment{},
		&domain.BotPersona{},
		&domain.ScheduledJob{},
	}
}

// AutoMigrate creates or updates the tables, indexes and unique constraints
// derived from the domain models.
func AutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()

	for _, m := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return fmt.Errorf("failed to parse model %T: %w", m, err)
		}
		table := stmt.Schema.Table
		existed := migrator.HasTable(m)

		if err := db.AutoMigrate(m); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", table),
				zap.Bool("table_existed", existed),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", table, err)
		}

		logger.Info("Migrated table",
			zap.String("table", table),
			zap.Bool("was_existing", existed),
		)
	}
	return nil
}

// AutoMigrateWithRetry runs AutoMigrate with linear backoff between attempts
func AutoMigrateWithRetry(db *gorm.DB, logger *zap.Logger, maxRetries int) error {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = AutoMigrate(db, logger); err == nil {
			return nil
		}
		if attempt < maxRetries {
			backoff := time.Duration(attempt) * time.Second
			logger.Warn("Migration attempt failed, retrying...",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			time.Sleep(backoff)
		}
	}
	return fmt.Errorf("migration failed after %d attempts: %w", maxRetries, err)
}
