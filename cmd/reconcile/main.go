// cmd/reconcile/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/audit"
	"github.com/bertomartin/ashoka-survey-web/internal/config"
	"github.com/bertomartin/ashoka-survey-web/internal/directory"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/bertomartin/ashoka-survey-web/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Command line flags
	var (
		batchSize = flag.Int("batch-size", 100, "Number of organizations to process in a batch")
		dryRun    = flag.Bool("dry-run", false, "Print what would be done without making changes")
		timeout   = flag.Duration("timeout", 30*time.Minute, "Maximum time to run reconciliation")
		orgs      = flag.String("orgs", "", "Comma separated organization ids to purge instead of asking the directory")
	)
	flag.Parse()

	// Initialize logger
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slogger := slog.New(logHandler)
	slog.SetDefault(slogger)

	orgIDs, err := parseIDs(*orgs)
	if err != nil {
		slogger.Error("invalid -orgs value", "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Initialize database
	db, err := setupDatabase(cfg)
	if err != nil {
		slogger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Audit rows go through a plain pgx pool
	pool, err := pgxpool.New(ctx, connString(cfg))
	if err != nil {
		slogger.Error("failed to open audit pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	cleanupService := service.NewOrganizationCleanupService(
		repository.NewSurveyRepository(db),
		directory.NewClient(&directory.Config{
			BaseURL: cfg.Directory.URL,
			Timeout: cfg.Directory.Timeout,
		}),
		audit.NewPgxLogger(pool),
		"", // Schedule doesn't matter for a one-time run
		slogger,
	)

	// Configure the cleanup service
	cleanupService.SetBatchSize(*batchSize)
	cleanupService.SetDryRun(*dryRun)
	cleanupService.SetTimeout(*timeout)

	var reconcileErr error
	if len(orgIDs) > 0 {
		slogger.Info("purging requested organizations", "count", len(orgIDs))
		var n int
		n, reconcileErr = cleanupService.PurgeOrganizations(ctx, orgIDs)
		slogger.Info("surveys purged", "count", n, "dry_run", *dryRun)
	} else {
		slogger.Info("reconciling deleted organizations from the directory")
		reconcileErr = cleanupService.Reconcile(ctx)
	}

	if reconcileErr != nil {
		slogger.Error("reconciliation failed", "error", reconcileErr)
		os.Exit(1)
	}

	slogger.Info("reconciliation completed successfully")
}

func parseIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing organization id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func connString(cfg *config.Config) string {
	if url := os.Getenv("DB_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
		cfg.Database.SearchPath,
	)
}

func setupDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(connString(cfg)), gormConfig)
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

	return db, nil
}
