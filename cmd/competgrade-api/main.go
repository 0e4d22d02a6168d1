package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sonsbeekmedia/competgrade-api/api/swagger"
	"github.com/sonsbeekmedia/competgrade-api/internal/handler"
	"github.com/sonsbeekmedia/competgrade-api/internal/middleware"
	"github.com/sonsbeekmedia/competgrade-api/internal/models"
	"github.com/sonsbeekmedia/competgrade-api/internal/repository"
	"github.com/sonsbeekmedia/competgrade-api/internal/service"
	"github.com/sonsbeekmedia/competgrade-api/pkg/cache"
	"github.com/sonsbeekmedia/competgrade-api/pkg/config"
	"github.com/sonsbeekmedia/competgrade-api/pkg/database"
	"github.com/sonsbeekmedia/competgrade-api/pkg/export"
	"github.com/sonsbeekmedia/competgrade-api/pkg/logger"
	corsmiddleware "github.com/sonsbeekmedia/competgrade-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sonsbeekmedia/competgrade-api/pkg/middleware/requestid"
	"github.com/sonsbeekmedia/competgrade-api/pkg/storage"
)

// @title Competgrade API
// @version 1.0.0
// @description Grading panel backend: rosters, grades, comments and certification checklists
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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, roster cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	users := repository.NewUserRepository(db)
	activities := repository.NewActivityRepository(db)
	grades := repository.NewGradeRepository(db)
	comments := repository.NewCommentRepository(db)
	certifications := repository.NewCertificationRepository(db)
	rubric := repository.NewRubricRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	// Services.
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Roster.CacheTTL, logr, cfg.Roster.CacheEnabled && redisClient != nil)

	authService := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "competgrade-api",
	})

	activityService := service.NewActivityService(activities, grades, comments, certifications, rubric, enrollments, cacheService, logr)
	gradingService := service.NewGradingService(grades, activityService, enrollments, rubric, cacheService,
		export.NewCSVExporter(), export.NewPDFExporter(), validate, logr, cfg.Roster.CacheTTL)
	commentService := service.NewCommentService(comments, activityService, users, validate, logr)
	certificationService := service.NewCertificationService(certifications, activityService, logr)
	rubricService := service.NewRubricService(rubric, activityService, validate, logr)

	exportStore, err := storage.NewExportStore(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("export store init failed", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Export.Secret, cfg.Export.TokenTTL)
	archiveService := service.NewArchiveService(exportStore, signer, cfg.Export.Retention, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	archiveService.Start(ctx)
	defer archiveService.Stop()
	archiveService.Prune()

	// Handlers.
	authHandler := handler.NewAuthHandler(authService)
	gradingHandler := handler.NewGradingHandler(gradingService, archiveService)
	commentHandler := handler.NewCommentHandler(commentService)
	certificationHandler := handler.NewCertificationHandler(certificationService)
	rubricHandler := handler.NewRubricHandler(rubricService)
	activityHandler := handler.NewActivityHandler(activityService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/summary", metricsHandler.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	grader := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	act := protected.Group("/activities/:activityId")
	{
		act.GET("", activityHandler.Get)
		act.DELETE("", middleware.RequireRoles(models.RoleAdmin), activityHandler.Delete)

		act.GET("/userlist", grader, gradingHandler.Userlist)
		act.POST("/grade", grader,
			middleware.Audit(users, models.AuditActionGradeSave, "grade"), gradingHandler.SaveGrade)
		act.POST("/deletegrade", grader,
			middleware.Audit(users, models.AuditActionGradeDelete, "grade"), gradingHandler.DeleteGrade)
		act.GET("/export", grader, gradingHandler.Export)

		act.POST("/comment", grader,
			middleware.Audit(users, models.AuditActionCommentSave, "comment"), commentHandler.Save)
		act.GET("/users/:userId/comments", middleware.RBAC("TEACHER", "ADMIN", "SELF"), commentHandler.ListForUser)
		act.GET("/users/:userId/comment", middleware.RBAC("TEACHER", "ADMIN", "SELF"), commentHandler.GetSingle)
		act.GET("/users/:userId/certification", middleware.RBAC("TEACHER", "ADMIN", "SELF"), certificationHandler.Status)

		act.GET("/rubric", rubricHandler.List)
		act.POST("/scripts", grader,
			middleware.Audit(users, models.AuditActionRubricChange, "script"), rubricHandler.SaveScript)
		act.POST("/criteria", grader,
			middleware.Audit(users, models.AuditActionRubricChange, "criterium"), rubricHandler.SaveCriterium)
	}

	protected.POST("/comments/:commentId/delete", grader,
		middleware.Audit(users, models.AuditActionCommentDelete, "comment"), commentHandler.Delete)
	protected.DELETE("/scripts/:scriptId", grader,
		middleware.Audit(users, models.AuditActionRubricChange, "script"), rubricHandler.DeleteScript)
	protected.DELETE("/criteria/:criteriumId", grader,
		middleware.Audit(users, models.AuditActionRubricChange, "criterium"), rubricHandler.DeleteCriterium)
	protected.GET("/exports/download", grader, gradingHandler.DownloadExport)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
