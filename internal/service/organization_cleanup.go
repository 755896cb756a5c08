// internal/service/organization_cleanup.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/audit"
	"github.com/bertomartin/ashoka-survey-web/internal/directory"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/robfig/cron/v3"
)

// OrganizationCleanupService deletes the surveys of organizations that were
// removed from the directory.
type OrganizationCleanupService struct {
	surveys   repository.SurveyRepositoryIface
	directory directory.DirectoryIface
	audit     audit.Logger
	schedule  string
	timeout   time.Duration
	batchSize int
	dryRun    bool // If true, don't make changes, just log
	logger    *slog.Logger
	cron      *cron.Cron
}

// NewOrganizationCleanupService creates a new cleanup service
func NewOrganizationCleanupService(
	surveys repository.SurveyRepositoryIface,
	dir directory.DirectoryIface,
	auditLogger audit.Logger,
	schedule string,
	logger *slog.Logger,
) *OrganizationCleanupService {
	if schedule == "" {
		schedule = "@every 30m"
	}
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OrganizationCleanupService{
		surveys:   surveys,
		directory: dir,
		audit:     auditLogger,
		schedule:  schedule,
		timeout:   5 * time.Minute,
		batchSize: 100,
		logger:    logger,
	}
}

// Start runs Reconcile on the configured schedule. Runs never overlap.
func (s *OrganizationCleanupService) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.Reconcile(ctx); err != nil {
			s.logger.Error("organization cleanup failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling organization cleanup %q: %w", s.schedule, err)
	}

	s.cron = c
	s.logger.Info("organization cleanup scheduled", "schedule", s.schedule, "dry_run", s.dryRun)
	c.Start()
	return nil
}

// Stop halts the schedule and waits for a running cleanup to finish
func (s *OrganizationCleanupService) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// SetBatchSize sets the number of organizations purged between context checks
func (s *OrganizationCleanupService) SetBatchSize(size int) {
	if size > 0 {
		s.batchSize = size
	}
}

// SetDryRun sets whether to actually delete or just log what would be done
func (s *OrganizationCleanupService) SetDryRun(dryRun bool) {
	s.dryRun = dryRun
}

// SetTimeout bounds each scheduled run
func (s *OrganizationCleanupService) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Reconcile polls the directory for deleted organizations and purges them
func (s *OrganizationCleanupService) Reconcile(ctx context.Context) error {
	ids, err := s.directory.DeletedOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("fetching deleted organizations: %w", err)
	}

	s.logger.Info("reconciling deleted organizations", "count", len(ids), "dry_run", s.dryRun)
	_, err = s.PurgeOrganizations(ctx, ids)
	return err
}

// PurgeOrganizations deletes every survey owned by each organization, one
// transaction per organization. It returns the number of surveys deleted
// (or that would be, in dry-run mode). A failing organization does not
// stop the others; their errors are joined.
func (s *OrganizationCleanupService) PurgeOrganizations(ctx context.Context, orgIDs []int64) (int, error) {
	orgIDs = uniqueIDs(orgIDs)

	var (
		total int
		errs  []error
	)
	for i := 0; i < len(orgIDs); i += s.batchSize {
		end := i + s.batchSize
		if end > len(orgIDs) {
			end = len(orgIDs)
		}

		batch := orgIDs[i:end]
		s.logger.Info("processing organization batch", "start", i, "end", end, "size", len(batch))

		for _, orgID := range batch {
			n, err := s.purge(ctx, orgID)
			if err != nil {
				s.logger.Error("failed to purge organization", "org_id", orgID, "error", err)
				errs = append(errs, fmt.Errorf("organization %d: %w", orgID, err))
				continue
			}
			total += n
		}

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}
	}

	return total, errors.Join(errs...)
}

func (s *OrganizationCleanupService) purge(ctx context.Context, orgID int64) (int, error) {
	if s.dryRun {
		id := orgID
		surveys, err := s.surveys.List(ctx, repository.SurveyFilter{OwnerOrgID: &id})
		if err != nil {
			return 0, err
		}
		s.logger.Info("would purge organization (dry run)", "org_id", orgID, "surveys", len(surveys))
		return len(surveys), nil
	}

	n, err := s.surveys.DeleteByOrganization(ctx, orgID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("purged organization", "org_id", orgID, "surveys", n)
	record(ctx, s.audit.LogOrganizationPurge(ctx, orgID, n, false), model.ActionOrganizationPurge)
	return n, nil
}
