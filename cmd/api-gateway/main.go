package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/becalab/scholarship-api/api/swagger"
	"github.com/becalab/scholarship-api/internal/handler"
	"github.com/becalab/scholarship-api/internal/middleware"
	"github.com/becalab/scholarship-api/internal/repository"
	"github.com/becalab/scholarship-api/internal/service"
	"github.com/becalab/scholarship-api/pkg/cache"
	"github.com/becalab/scholarship-api/pkg/config"
	"github.com/becalab/scholarship-api/pkg/database"
	exportpkg "github.com/becalab/scholarship-api/pkg/export"
	"github.com/becalab/scholarship-api/pkg/logger"
	corsmiddleware "github.com/becalab/scholarship-api/pkg/middleware/cors"
	reqidmiddleware "github.com/becalab/scholarship-api/pkg/middleware/requestid"
	"github.com/becalab/scholarship-api/pkg/storage"
)

// @title Scholarship API
// @version 1.0.0
// @description Public scholarship catalog, application intake and back office
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	}

	fileStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	validate := validator.New()

	scholarshipRepo := repository.NewScholarshipRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	adminLogRepo := repository.NewAdminLogRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(adminRepo, adminLogRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	scholarshipService := service.NewScholarshipService(scholarshipRepo, cacheRepo, adminLogRepo, metricsService, validate, logr, service.ScholarshipServiceConfig{
		CacheEnabled: cfg.Cache.Enabled && redisClient != nil,
		CacheTTL:     cfg.Cache.TTL,
	})
	applicationService := service.NewApplicationService(applicationRepo, scholarshipRepo, adminLogRepo, metricsService, validate, logr)
	uploadService := service.NewUploadService(fileStore, signer, logr, service.UploadServiceConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		MaxFilesPerReq:   cfg.Uploads.MaxFilesPerReq,
	})
	exportService := service.NewExportService(applicationRepo, scholarshipRepo, adminLogRepo,
		exportpkg.NewCSVExporter(), exportpkg.NewPDFExporter(), logr)
	auditService := service.NewAuditService(adminLogRepo, logr)

	authHandler := handler.NewAuthHandler(authService)
	scholarshipHandler := handler.NewScholarshipHandler(scholarshipService)
	applicationHandler := handler.NewApplicationHandler(applicationService)
	uploadHandler := handler.NewUploadHandler(uploadService, cfg.APIPrefix)
	exportHandler := handler.NewExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService, db)
	auditHandler := handler.NewAuditHandler(auditService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/scholarships", scholarshipHandler.PublicList)
		api.GET("/scholarships/:slug", scholarshipHandler.PublicGet)
		api.POST("/applications", applicationHandler.Submit)
		api.POST("/applications/files", uploadHandler.Upload)
		api.GET("/applications/files/info", uploadHandler.Info)
		api.GET("/files/download", uploadHandler.Download)

		api.POST("/admin/auth/login", authHandler.Login)

		admin := api.Group("/admin")
		admin.Use(middleware.JWT(authService), middleware.RequireAdmin())
		{
			admin.GET("/auth/me", authHandler.Me)

			admin.GET("/scholarships", scholarshipHandler.AdminList)
			admin.POST("/scholarships", scholarshipHandler.Create)
			admin.GET("/scholarships/:id", scholarshipHandler.AdminGet)
			admin.PUT("/scholarships/:id", scholarshipHandler.Update)

			admin.GET("/applications", applicationHandler.List)
			admin.GET("/applications/stats", applicationHandler.Stats)
			admin.GET("/applications/export", exportHandler.ApplicationsCSV)
			admin.GET("/applications/:id", applicationHandler.Get)
			admin.PATCH("/applications/:id/status", applicationHandler.UpdateStatus)
			admin.GET("/applications/:id/pdf", exportHandler.ApplicationPDF)

			admin.GET("/files/:filename/url", uploadHandler.DownloadURL)
			admin.GET("/logs", auditHandler.List)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
