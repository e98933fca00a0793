package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"blog-comment-bot/internal/client"
	"blog-comment-bot/internal/config"
	"blog-comment-bot/internal/database"
	"blog-comment-bot/internal/director"
	"blog-comment-bot/internal/job"
	"blog-comment-bot/internal/metrics"
	"blog-comment-bot/internal/repository"
	"blog-comment-bot/internal/router"
	"blog-comment-bot/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Comment Bot Service",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("env", cfg.Server.Env),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("table_prefix", cfg.Database.TablePrefix),
		zap.String("blog_url", cfg.Blog.BaseURL),
	)

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	logger.Info("Metrics initialized")

	// Initialize database
	dbConfig := database.Config{
		DSN:             cfg.Database.GetDSN(),
		TablePrefix:     cfg.Database.TablePrefix,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.ConnectWithRetry(appCtx, dbConfig, 10, 5*time.Second, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrateWithRetry(db, logger, 3); err != nil {
			logger.Fatal("Failed to run database migrations", zap.Error(err))
		}
	}

	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	dbStatsDone := database.StartDBStatsCollector(db, m, 15*time.Second)

	commentRepo := repository.NewCommentRepository(db)
	personaRepo := repository.NewPersonaRepository(db)
	jobRepo := repository.NewJobRepository(db)

	if cfg.Personas.SeedFile != "" {
		seedPersonas(appCtx, cfg.Personas.SeedFile, personaRepo, logger)
	}

	// Redis is optional; without it sweeps rely on the per-job claim alone
	var redisClient *redis.Client
	var locker service.Locker
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewRedis(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to connect to redis, sweep lock disabled", zap.Error(err))
			redisClient = nil
		} else {
			locker = database.NewRedisLocker(redisClient)
			logger.Info("Redis connected, sweep lock enabled")
		}
	}

	// External clients
	blogClient := client.NewBlogClient(cfg.Blog.BaseURL, cfg.Blog.SitemapURL, cfg.Blog.Timeout, logger, m)

	var model director.ModelGateway
	geminiClient, err := client.NewGeminiClient(appCtx, client.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
	}, logger, m)
	if err != nil {
		logger.Warn("Model gateway unavailable, director runs will fail", zap.Error(err))
		model = unavailableModel{err: err}
	} else {
		model = geminiClient
		logger.Info("Model gateway initialized", zap.String("model", cfg.Gemini.Model))
	}

	parseMode := director.ParseTolerant
	if cfg.Director.StrictParsing {
		parseMode = director.ParseStrict
	}
	dir := director.NewDirector(commentRepo, personaRepo, blogClient, model, director.Options{
		DefaultLanguage: cfg.Director.DefaultLanguage,
		MaxCommentRunes: cfg.Director.MaxCommentRunes,
		ParseMode:       parseMode,
		ModelName:       cfg.Gemini.Model,
	}, logger, m)

	// Services
	commentService := service.NewCommentService(commentRepo, blogClient, cfg.Director.DefaultAvatar, logger, m)
	jobService := service.NewJobService(jobRepo, dir, locker, service.JobServiceConfig{
		MinDelayMinutes: cfg.Schedule.MinDelayMinutes,
		MaxDelayMinutes: cfg.Schedule.MaxDelayMinutes,
		LeaseDuration:   cfg.Schedule.LeaseDuration,
		LockTTL:         cfg.Schedule.LockTTL,
		BatchLimit:      cfg.Schedule.BatchLimit,
	}, logger, m)
	botService := service.NewBotService(dir, commentRepo, logger)
	personaService := service.NewPersonaService(personaRepo, logger)

	// Business gauges
	collector := metrics.NewBusinessMetricsCollector(db, m, logger)
	collector.Start()

	// In-process sweep; /cron/sweep stays available for external schedulers
	scheduler := job.NewScheduler(logger)
	if cfg.Schedule.SweepEnabled {
		sweep := job.NewSweepJob(appCtx, jobService, cfg.Schedule.LockTTL, logger)
		if err := scheduler.Register("sweep", cfg.Schedule.SweepSpec, sweep); err != nil {
			logger.Fatal("Failed to register sweep job", zap.Error(err))
		}
		scheduler.Start()
	}

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		Metrics:        m,
		BasePath:       cfg.Server.BasePath,
		InternalAPIKey: cfg.Auth.InternalAPIKey,
		CORSOrigins:    cfg.Server.CORSOrigins,
		CommentService: commentService,
		JobService:     jobService,
		BotService:     botService,
		PersonaService: personaService,
	})

	if cfg.Auth.InternalAPIKey == "" {
		logger.Warn("Internal API key is not set, trigger and admin routes are unauthenticated")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Comment Bot Service started successfully", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Stop new sweeps and let a running one finish its current job before
	// cancelling the app context
	if err := scheduler.Stop(ctx); err != nil {
		logger.Warn("Sweep still running at shutdown", zap.Error(err))
	}
	stopApp()

	collector.Stop()
	close(dbStatsDone)

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		logger.Error("Failed to close database", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func seedPersonas(ctx context.Context, path string, repo repository.PersonaRepository, logger *zap.Logger) {
	seeds, err := database.LoadPersonaSeed(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("No persona seed file, skipping", zap.String("path", path))
			return
		}
		logger.Warn("Failed to load persona seed", zap.Error(err))
		return
	}
	if err := database.SeedPersonas(ctx, repo, seeds, logger); err != nil {
		logger.Warn("Failed to seed personas", zap.Error(err))
	}
}

// unavailableModel stands in for the model gateway when it could not be
// configured, so the API keeps serving comments.
type unavailableModel struct {
	err error
}

func (u unavailableModel) Generate(ctx context.Context, prompt string) (string, error) {
	return "", u.err
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
