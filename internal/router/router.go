package router

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	commonmw "github.com/OrangesCloud/wealist-advanced-go-pkg/middleware"

	"blog-comment-bot/internal/handler"
	"blog-comment-bot/internal/metrics"
	"blog-comment-bot/internal/middleware"
	"blog-comment-bot/internal/service"
)

// Config holds router dependencies
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	BasePath       string
	InternalAPIKey string
	CORSOrigins    []string

	CommentService service.CommentService
	JobService     service.JobService
	BotService     service.BotService
	PersonaService service.PersonaService
}

// Setup sets up the router with all routes and middleware
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(commonmw.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	commentHandler := handler.NewCommentHandler(cfg.CommentService, cfg.Logger)
	triggerHandler := handler.NewTriggerHandler(cfg.JobService, cfg.Logger)
	botHandler := handler.NewBotHandler(cfg.BotService, cfg.Logger)
	adminHandler := handler.NewAdminHandler(cfg.CommentService, cfg.JobService, cfg.Logger)
	personaHandler := handler.NewPersonaHandler(cfg.PersonaService, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)

	// Probes and metrics are served at the root for the cluster and again
	// under the base path for the ingress.
	registerProbes(r.Group(""), healthHandler)

	api := r.Group(cfg.BasePath)
	if cfg.BasePath != "" && cfg.BasePath != "/" {
		registerProbes(api, healthHandler)
	}

	// Public blog API
	api.GET("/comments", commentHandler.GetComments)
	api.POST("/comments", commentHandler.CreateComment)

	// Callers with the internal API key: the blog build, the cron and admins
	internal := api.Group("")
	internal.Use(middleware.InternalAuth(cfg.InternalAPIKey))
	{
		internal.POST("/webhook/new-post", triggerHandler.NewPost)
		internal.GET("/cron/sweep", triggerHandler.Sweep)
		internal.POST("/cron/sweep", triggerHandler.Sweep)

		bot := internal.Group("/bot")
		bot.POST("/director", botHandler.RunDirector)
		bot.POST("/auto-trigger", botHandler.AutoTrigger)

		admin := internal.Group("/admin")
		admin.GET("/comments", adminHandler.ListComments)
		admin.DELETE("/comments/:id", adminHandler.DeleteComment)
		admin.GET("/jobs", adminHandler.ListJobs)
		admin.GET("/posts-stats", adminHandler.PostsStats)
		admin.GET("/personas", personaHandler.ListPersonas)
	}

	return r
}

func registerProbes(g *gin.RouterGroup, h *handler.HealthHandler) {
	g.GET("/health", h.Health)
	g.GET("/ready", h.Ready)
	g.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
