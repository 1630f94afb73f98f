package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campushq/course-scheduler-api/api/swagger"
	"github.com/campushq/course-scheduler-api/internal/handler"
	"github.com/campushq/course-scheduler-api/internal/middleware"
	"github.com/campushq/course-scheduler-api/internal/repository"
	"github.com/campushq/course-scheduler-api/internal/service"
	"github.com/campushq/course-scheduler-api/pkg/cache"
	"github.com/campushq/course-scheduler-api/pkg/config"
	"github.com/campushq/course-scheduler-api/pkg/export"
	"github.com/campushq/course-scheduler-api/pkg/logger"
	corsmiddleware "github.com/campushq/course-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campushq/course-scheduler-api/pkg/middleware/requestid"
	"github.com/campushq/course-scheduler-api/pkg/storage"
)

// @title Course Scheduler API
// @version 1.0.0
// @description AI-assisted course schedule generation and discovery API
// @BasePath /api
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	client, err := cache.NewRedis(cfg.Redis)
	var cacheSvc *service.CacheService
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Catalog.CacheTTL, logr, false)
	} else {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(client, logr), metricsSvc, cfg.Catalog.CacheTTL, logr, true)
	}

	catalogRepo := repository.NewCatalogRepository(cfg.Catalog, logr)
	catalogSvc := service.NewCatalogService(catalogRepo, cacheSvc, metricsSvc, logr, service.CatalogServiceConfig{
		CacheTTL: cfg.Catalog.CacheTTL,
	})

	var aiSvc *service.AIService
	var geminiClient *service.GeminiClient
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		geminiClient, err = service.NewGeminiClient(ctx, cfg.AI, logr)
		if err != nil {
			logr.Warn("gemini client unavailable, ai features disabled", zap.Error(err))
			aiSvc = service.NewAIService(nil, logr, service.AIServiceConfig{Enabled: false, Timeout: cfg.AI.Timeout})
		} else {
			aiSvc = service.NewAIService(geminiClient, logr, service.AIServiceConfig{Enabled: true, Timeout: cfg.AI.Timeout})
		}
	} else {
		aiSvc = service.NewAIService(nil, logr, service.AIServiceConfig{Enabled: false, Timeout: cfg.AI.Timeout})
	}

	generatorSvc := service.NewScheduleGeneratorService(catalogSvc, nil, validate, logr, service.ScheduleGeneratorConfig{
		MaxCombinations:  cfg.Generator.MaxCombinations,
		MaxCourses:       cfg.Generator.MaxCourses,
		MaxOptionsCap:    cfg.Generator.MaxOptionsCap,
		QualityThreshold: cfg.Generator.QualityThreshold,
	})
	scheduleSvc := service.NewScheduleService(generatorSvc, aiSvc, validate, logr)
	searchSvc := service.NewSearchService(catalogSvc, aiSvc, cacheSvc, validate, logr, service.SearchServiceConfig{
		MaxResults:      cfg.Search.MaxResults,
		SuggestionLimit: cfg.Search.SuggestionLimit,
		CacheTTL:        cfg.Search.CacheTTL,
	})

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, storeErr := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if storeErr != nil {
			logr.Warn("export storage unavailable, exports disabled", zap.Error(storeErr))
		} else {
			signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
			exportSvc = service.NewExportService(store, signer, metricsSvc, validate, logr, service.ExportConfig{
				APIPrefix:       cfg.APIPrefix,
				CleanupAfter:    cfg.Exports.CleanupAfter,
				CleanupInterval: cfg.Exports.CleanupInterval,
			}, export.NewCSVExporter(), export.NewPDFExporter())
			exportSvc.StartCleanup(ctx)
		}
	}

	analyticsSvc := service.NewAnalyticsService(metricsSvc, logr, service.AnalyticsConfig{
		Enabled:    cfg.Analytics.Enabled,
		Workers:    cfg.Analytics.Workers,
		BufferSize: cfg.Analytics.BufferSize,
	})
	analyticsSvc.Start(ctx)

	scheduleHandler := handler.NewScheduleHandler(generatorSvc, scheduleSvc, catalogSvc, aiSvc, cacheSvc, analyticsSvc)
	searchHandler := handler.NewSearchHandler(searchSvc, analyticsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	limit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		limit = middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	respCache := middleware.ResponseCache(cacheSvc, cfg.Redis.ResponsesTTL, logr)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)

	schedules := api.Group("/schedules")
	schedules.POST("/generate", limit, scheduleHandler.Generate)
	schedules.GET("/courses/:courseId/sections", respCache, scheduleHandler.CourseSections)
	schedules.POST("/conflicts", scheduleHandler.Conflicts)
	schedules.POST("/optimize", scheduleHandler.Optimize)
	schedules.POST("/summary", scheduleHandler.Summary)
	schedules.GET("/preferences", respCache, scheduleHandler.Preferences)
	schedules.GET("/health", scheduleHandler.Health)
	schedules.DELETE("/cache/:seasonCode", scheduleHandler.InvalidateCache)
	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		schedules.POST("/export", exportHandler.Export)
		schedules.GET("/export/:token/download", exportHandler.Download)
	}

	search := api.Group("/search")
	search.POST("/courses", limit, searchHandler.Search)
	search.GET("/courses/:courseId", respCache, searchHandler.CourseDetail)
	search.POST("/suggestions", searchHandler.Suggestions)
	search.GET("/seasons", respCache, searchHandler.Seasons)
	search.GET("/filters", respCache, searchHandler.Filters)

	if cfg.Env != config.EnvProduction {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}

	cancel()
	analyticsSvc.Stop()
	if geminiClient != nil {
		geminiClient.Close() //nolint:errcheck
	}
	if client != nil {
		client.Close() //nolint:errcheck
	}
	logr.Info("server stopped")
}
