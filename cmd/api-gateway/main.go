package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/perf-review-api/api/swagger"
	"github.com/noah-isme/perf-review-api/internal/handler"
	"github.com/noah-isme/perf-review-api/internal/middleware"
	"github.com/noah-isme/perf-review-api/internal/notify"
	"github.com/noah-isme/perf-review-api/internal/repository"
	"github.com/noah-isme/perf-review-api/internal/service"
	"github.com/noah-isme/perf-review-api/pkg/cache"
	"github.com/noah-isme/perf-review-api/pkg/config"
	"github.com/noah-isme/perf-review-api/pkg/database"
	"github.com/noah-isme/perf-review-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/perf-review-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/perf-review-api/pkg/middleware/requestid"
)

// @title Performance Review API
// @version 1.0.0
// @description Review cycles, weighted KRA scoring and review submissions
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, active cycle cache disabled", "error", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	cycleRepo := repository.NewReviewCycleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	kraRepo := repository.NewKRARepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	orgRepo := repository.NewOrganisationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	var outbox notify.Outbox = notify.NopOutbox{}
	if cfg.Notifications.Enabled {
		dispatcher := notify.NewDispatcher(cfg.Notifications, []notify.Sender{
			notify.NewEmailSender(cfg.Notifications),
			notify.NewSlackSender(cfg.Notifications.SlackWebhookURL),
		}, logr)
		dispatcher.Start(context.Background())
		defer dispatcher.Stop()
		outbox = dispatcher
	}

	cycleSvc := service.NewReviewCycleService(cycleRepo, kraRepo, employeeRepo,
		cacheRepo, cfg.ReviewCycle.CacheTTL, auditRepo, outbox, nil, logr)
	reviewSvc := service.NewReviewService(reviewRepo, cycleSvc, employeeRepo,
		auditRepo, outbox, nil, logr)
	exportSvc := service.NewExportService(cycleRepo, nil, nil, logr)
	metricsSvc := service.NewMetricsService()

	dates := handler.NewDateResolver(orgRepo, cfg.ReviewCycle.DefaultTimezone, logr)
	cycleHandler := handler.NewReviewCycleHandler(cycleSvc, dates)
	reviewHandler := handler.NewReviewHandler(reviewSvc, dates)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/organisations/:orgId/review-cycles", cycleHandler.List)
		api.GET("/organisations/:orgId/review-cycles/active", cycleHandler.GetActive)
		api.GET("/organisations/:orgId/review-submission-started", cycleHandler.SubmissionStarted)
		api.POST("/review-cycles", cycleHandler.Create)
		api.GET("/review-cycles/:id", cycleHandler.Get)
		api.PUT("/review-cycles/:id", cycleHandler.Update)
		api.POST("/review-cycles/:id/unpublish", cycleHandler.Unpublish)
		api.GET("/review-cycles/:id/report", exportHandler.CycleReport)
		api.GET("/reviews", reviewHandler.List)
		api.GET("/reviews/:id", reviewHandler.Get)
		api.POST("/reviews", reviewHandler.Save)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
