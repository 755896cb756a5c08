package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bertomartin/ashoka-survey-web/internal/audit"
	"github.com/bertomartin/ashoka-survey-web/internal/model"
	"github.com/bertomartin/ashoka-survey-web/internal/repository"
	"github.com/google/uuid"
)

// Ensure AuditLogService implements the audit.Logger interface
var _ audit.Logger = (*AuditLogService)(nil)

// AuditLogRepositoryIface is the storage the audit service writes through.
type AuditLogRepositoryIface interface {
	Create(ctx context.Context, log *model.AuditLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.AuditLog, error)
	Query(ctx context.Context, params repository.QueryParams) ([]model.AuditLog, int64, error)
}

// AuditLogService handles operations related to audit logs
type AuditLogService struct {
	repo AuditLogRepositoryIface
}

// NewAuditLogService creates a new AuditLogService
func NewAuditLogService(repo AuditLogRepositoryIface) *AuditLogService {
	return &AuditLogService{
		repo: repo,
	}
}

// LogAction logs a successful administrative action
func (s *AuditLogService) LogAction(
	ctx context.Context,
	action string,
	actor audit.Actor,
	entity model.Entity,
	contextData map[string]interface{},
) error {
	return s.repo.Create(ctx, audit.NewEntry(ctx, action, true, actor, entity, contextData))
}

// LogAccessDenied logs an action refused to a non-admin
func (s *AuditLogService) LogAccessDenied(
	ctx context.Context,
	actor audit.Actor,
	permission string,
	entity model.Entity,
) error {
	data := map[string]interface{}{"permission": permission}
	return s.repo.Create(ctx, audit.NewEntry(ctx, model.ActionAccessDenied, false, actor, entity, data))
}

// LogOrganizationPurge logs the removal of a deleted organization's surveys
func (s *AuditLogService) LogOrganizationPurge(
	ctx context.Context,
	orgID int64,
	surveysDeleted int,
	dryRun bool,
) error {
	entity := model.Entity{Type: model.EntityOrganization, ID: strconv.FormatInt(orgID, 10)}
	data := map[string]interface{}{"surveys_deleted": surveysDeleted, "dry_run": dryRun}
	return s.repo.Create(ctx, audit.NewEntry(ctx, model.ActionOrganizationPurge, true, audit.Actor{OrgID: orgID}, entity, data))
}

// GetAuditLogs retrieves audit logs based on query parameters
func (s *AuditLogService) GetAuditLogs(
	ctx context.Context,
	params repository.QueryParams,
) ([]model.AuditLog, int64, error) {
	return s.repo.Query(ctx, params)
}

// GetAuditLogByID retrieves an audit log by ID
func (s *AuditLogService) GetAuditLogByID(
	ctx context.Context,
	id uuid.UUID,
) (*model.AuditLog, error) {
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log by ID: %w", err)
	}

	return log, nil
}

// record writes an audit entry without failing the caller's operation.
func record(ctx context.Context, err error, action string) {
	if err != nil {
		slog.WarnContext(ctx, "failed to write audit log", "action", action, "error", err)
	}
}
