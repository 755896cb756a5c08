// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	surveyweb "github.com/bertomartin/ashoka-survey-web"
	"github.com/bertomartin/ashoka-survey-web/internal/auth"
	"github.com/bertomartin/ashoka-survey-web/internal/config"
	"github.com/bertomartin/ashoka-survey-web/internal/directory"
	"github.com/bertomartin/ashoka-survey-web/internal/email"
	"github.com/bertomartin/ashoka-survey-web/internal/email/mailer"
	"github.com/bertomartin/ashoka-survey-web/internal/handler"
	"github.com/bertomartin/ashoka-survey-web/internal/i18n"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/bertomartin/ashoka-survey-web/internal/router"
	"github.com/bertomartin/ashoka-survey-web/internal/service"
	"github.com/bertomartin/ashoka-survey-web/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := setupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("getting database instance: %w", err)
	}
	defer sqlDB.Close()

	migrations := surveyweb.NewConfig(ctx, sqlDB)
	migrations.SetLogger(logger)
	if err := migrations.MigrateUp(); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	// Initialize repositories
	surveyRepo := repository.NewSurveyRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditLogService(auditRepo)

	// Organization directory
	dir := directory.NewClient(&directory.Config{
		BaseURL: cfg.Directory.URL,
		Timeout: cfg.Directory.Timeout,
	})

	// Initialize cache service
	cacheService := service.NewCacheService(ctx, service.CacheConfig{
		TTL:         cfg.Session.CacheTTL,
		CleanupFreq: cfg.Session.CacheTTL / 2,
	})
	defer cacheService.Close()

	loadOrganizations := func(ctx context.Context, sessionID, token string) ([]model.Organization, error) {
		return cacheService.SessionOrganizations(ctx, dir, sessionID, token)
	}

	// Initialize email service
	provider := email.ProviderFromConfig(cfg)
	emailService, err := email.NewEmailService(cfg, provider)
	if err != nil {
		return fmt.Errorf("initializing email service: %w", err)
	}
	logger.Info("email provider selected", "provider", provider)
	notifier := mailer.NewSurveyNotifier(emailService, cfg.BaseURL)

	images := storage.NewImageStore(cfg.Uploads.Dir, cfg.Uploads.BaseURL)

	// Initialize services
	surveyService := service.NewSurveyService(surveyRepo, dir, auditService, notifier)
	responseService := service.NewResponseService(responseRepo, surveyRepo)
	questionService := service.NewQuestionService(questionRepo, surveyRepo, images, auditService)

	cleanupService := service.NewOrganizationCleanupService(surveyRepo, dir, auditService, cfg.Cleanup.Schedule, logger)
	cleanupService.SetBatchSize(cfg.Cleanup.BatchSize)
	cleanupService.SetDryRun(cfg.Cleanup.DryRun)
	if err := cleanupService.Start(); err != nil {
		return fmt.Errorf("starting organization cleanup: %w", err)
	}
	defer cleanupService.Stop()

	// Views and translations
	tr, err := i18n.Load(surveyweb.LocaleFS, "locales", cfg.DefaultLocale)
	if err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}
	views, err := handler.NewViews(surveyweb.ViewFS, tr)
	if err != nil {
		return fmt.Errorf("loading views: %w", err)
	}

	// Initialize handlers
	deps := router.Deps{
		Logger:            logger,
		Tokens:            auth.NewTokenManager(cfg.Session.Secret, cfg.Session.ExpiryPeriod),
		CookieName:        cfg.Session.CookieName,
		LoadOrganizations: loadOrganizations,
		Translator:        tr,

		Surveys:              handler.NewSurveyHandler(surveyService, views, tr),
		Responses:            handler.NewResponseHandler(responseService, views, tr),
		Questions:            handler.NewQuestionHandler(questionService),
		AuditLogs:            handler.NewAuditLogHandler(auditService),
		DeletedOrganizations: handler.NewDeletedOrganizationsHandler(cleanupService, auth.NewSecretHasher(), cfg.WebhookSecretHash),

		UploadDir:  cfg.Uploads.Dir,
		UploadPath: cfg.Uploads.BaseURL,
	}
	if cfg.WebhookSecretHash == "" {
		logger.Warn("WEBHOOK_SECRET_HASH is not set; deleted organization notifications will be rejected")
	}

	// Configure server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.New(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal or server error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("server shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

func setupDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
		cfg.Database.SearchPath,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}
