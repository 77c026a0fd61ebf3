package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/activity-server/api/swagger"
	"github.com/noah-isme/activity-server/internal/handler"
	"github.com/noah-isme/activity-server/internal/middleware"
	"github.com/noah-isme/activity-server/internal/repository"
	"github.com/noah-isme/activity-server/internal/service"
	"github.com/noah-isme/activity-server/pkg/cache"
	"github.com/noah-isme/activity-server/pkg/config"
	"github.com/noah-isme/activity-server/pkg/database"
	"github.com/noah-isme/activity-server/pkg/logger"
	corsmiddleware "github.com/noah-isme/activity-server/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/activity-server/pkg/middleware/requestid"
)

// @title Activity Server API
// @version 1.0.0
// @description Notebook activity submission and grading service
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := context.Background()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cacheRepo != nil)

	validate := validator.New()

	activityRepo := repository.NewActivityRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)

	authSvc := service.NewAuthService(instructorRepo, logr)
	activitySvc := service.NewActivityService(activityRepo, cacheSvc, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, activityRepo, cacheSvc, validate, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, activityRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(activityRepo, submissionRepo, logr)
	exportSvc := service.NewExportService(activitySvc, submissionRepo, logr)

	if err := instructorSvc.SeedAdmins(ctx, cfg.OAuth.AdminEmails); err != nil {
		logr.Sugar().Fatalw("failed to seed admin instructors", "error", err)
	}

	activityHandler := handler.NewActivityHandler(activitySvc, exportSvc, authSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc, authSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	dashboardHandler := handler.NewDashboardHandler(authSvc, dashboardSvc, submissionSvc, cfg)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.SetHTMLTemplate(handler.Templates())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Activity Server API", "docs": "/docs"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group("/api")
	api.POST("/submit", submissionHandler.Submit)
	api.GET("/activities", activityHandler.List)
	api.GET("/activities/by-email/:email", activityHandler.ByEmail)

	protected := api.Group("", middleware.InstructorAuth(authSvc))
	protected.POST("/activity", activityHandler.Create)
	protected.PATCH("/activity/:activity_id", activityHandler.Update)
	protected.DELETE("/activity/:activity_id", activityHandler.Delete)
	protected.GET("/activity/:activity_id/export", activityHandler.Export)
	protected.POST("/instructor", instructorHandler.Add)
	protected.PUT("/score", submissionHandler.UpdateScore)
	protected.GET("/submissions/:activity_id/:user/attempts", submissionHandler.Attempts)

	r.GET("/dashboard", dashboardHandler.Dashboard)
	r.GET("/dashboard/logout", dashboardHandler.Logout)
	r.GET("/download/:activity_id/:user", dashboardHandler.Download)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
