package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"blog-comment-bot/internal/config"
)

// NewRedis connects to redis. A redis:// URL takes precedence over host/port.
func NewRedis(cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	var client *redis.Client

	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		client = redis.NewClient(opts)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Info("Redis connection established successfully",
		zap.String("addr", client.Options().Addr),
		zap.Int("db", client.Options().DB),
	)
	return client, nil
}
